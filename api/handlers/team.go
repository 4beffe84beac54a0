package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	"github.com/unexplained-archive/unexplained-archive-api/models"
	templates "github.com/unexplained-archive/unexplained-archive-api/templates/html"
)

// Team exported for testing purposes
type Team struct {
	DB     databases.TeamDatabase
	IDB    databases.InvitationDatabase
	CDB    databases.CaseDatabase
	UDB    databases.UserDatabase
	ChatDB databases.ChatDatabase
}

// TeamHandler returns the case team ordered by join date
func (t Team) TeamHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	sort := bson.M{"joinedAt": 1}
	members, err := t.DB.Find(context.Background(), bson.M{"caseId": caseID}, &options.FindOptions{Sort: sort})
	if err != nil {
		config.ErrorStatus("failed to get team members", http.StatusNotFound, w, err)
		return
	}
	if len(members) == 0 {
		members = []models.TeamMember{}
	}

	b, err := json.Marshal(members)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type inviteRequest struct {
	InviterID string `json:"inviterId"`
	InviteeID string `json:"inviteeId"`
}

// InviteHandler lets the team leader invite an approved investigator. One
// pending invitation per {case, invitee}; a duplicate surfaces as
// "already invited".
func (t Team) InviteHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.InviterID == "" || req.InviteeID == "" {
		config.ErrorStatus("inviterId and inviteeId are required", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	caseDoc, err := t.CDB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}
	if caseDoc.AssignedInvestigator != req.InviterID {
		config.ErrorStatus("only the team leader can invite", http.StatusForbidden, w, fmt.Errorf("inviter is not the assigned investigator"))
		return
	}

	invitee, err := t.UDB.FindOne(context.Background(), userIDFilter(req.InviteeID))
	if err != nil {
		config.ErrorStatus("failed to get invitee", http.StatusNotFound, w, err)
		return
	}
	if invitee.Details.Role != models.RoleInvestigator || invitee.Details.InvestigatorStatus != models.InvestigatorApproved {
		config.ErrorStatus("invitee is not an approved investigator", http.StatusForbidden, w, fmt.Errorf("role: %v, status: %v", invitee.Details.Role, invitee.Details.InvestigatorStatus))
		return
	}

	onTeam, err := t.DB.CountDocuments(context.Background(), bson.M{"caseId": caseID, "userId": req.InviteeID})
	if err != nil {
		config.ErrorStatus("failed to check team membership", http.StatusInternalServerError, w, err)
		return
	}
	if onTeam > 0 {
		config.ErrorStatus("user is already on the team", http.StatusConflict, w, fmt.Errorf("member exists"))
		return
	}

	pending, err := t.IDB.CountDocuments(context.Background(), bson.M{
		"caseId":    caseID,
		"inviteeId": req.InviteeID,
		"status":    models.InvitationPending,
	})
	if err != nil {
		config.ErrorStatus("failed to check invitations", http.StatusInternalServerError, w, err)
		return
	}
	if pending > 0 {
		config.ErrorStatus("user is already invited", http.StatusConflict, w, fmt.Errorf("pending invitation exists"))
		return
	}

	invitation := models.Invitation{
		ID:        primitive.NewObjectID(),
		CaseID:    caseID,
		InviterID: req.InviterID,
		InviteeID: req.InviteeID,
		Status:    models.InvitationPending,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	_, err = t.IDB.InsertOne(context.Background(), invitation)
	if err != nil {
		// the unique {caseId, inviteeId, status} index catches invites that
		// raced past the pending-invitation check
		if mongo.IsDuplicateKeyError(err) {
			config.ErrorStatus("user is already invited", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to create invitation", http.StatusInternalServerError, w, err)
		return
	}

	if invitee.Details.Email != "" {
		go sendInvitationEmail(invitee.Details.Email, caseDoc.Title)
	}
	go sendNotificationToUser(req.InviteeID, map[string]interface{}{
		"type":         "team_invitation",
		"caseId":       caseID,
		"invitationId": invitation.ID.Hex(),
	})

	b, err := json.Marshal(invitation)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

type invitationActionRequest struct {
	UserID string `json:"userId"`
	Action string `json:"action"`
}

// RespondInvitationHandler accepts, rejects or cancels a pending invitation.
// Accept and reject belong to the invitee, cancel to the sender. Accepting
// joins the team with a 0% share; the leader rebalances explicitly.
func (t Team) RespondInvitationHandler(w http.ResponseWriter, r *http.Request) {
	invitationID := mux.Vars(r)["invitation_id"]

	iID, err := primitive.ObjectIDFromHex(invitationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req invitationActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	invitation, err := t.IDB.FindOne(context.Background(), bson.M{"_id": iID})
	if err != nil {
		config.ErrorStatus("failed to get invitation", http.StatusNotFound, w, err)
		return
	}
	if invitation.Status != models.InvitationPending {
		config.ErrorStatus("invitation is no longer pending", http.StatusConflict, w, fmt.Errorf("status: %v", invitation.Status))
		return
	}

	var newStatus string
	switch req.Action {
	case "accept":
		if req.UserID != invitation.InviteeID {
			config.ErrorStatus("only the invitee can accept", http.StatusForbidden, w, fmt.Errorf("user mismatch"))
			return
		}
		newStatus = models.InvitationAccepted
	case "reject":
		if req.UserID != invitation.InviteeID {
			config.ErrorStatus("only the invitee can reject", http.StatusForbidden, w, fmt.Errorf("user mismatch"))
			return
		}
		newStatus = models.InvitationRejected
	case "cancel":
		if req.UserID != invitation.InviterID {
			config.ErrorStatus("only the sender can cancel", http.StatusForbidden, w, fmt.Errorf("user mismatch"))
			return
		}
		newStatus = models.InvitationCanceled
	default:
		config.ErrorStatus("action must be accept, reject or cancel", http.StatusBadRequest, w, fmt.Errorf("got %q", req.Action))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := t.IDB.UpdateOne(context.Background(),
		bson.M{"_id": iID, "status": models.InvitationPending},
		bson.M{"$set": bson.M{"status": newStatus, "respondedAt": now}},
	)
	if err != nil {
		config.ErrorStatus("failed to update invitation", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("invitation is no longer pending", http.StatusConflict, w, fmt.Errorf("lost update race"))
		return
	}

	if newStatus == models.InvitationAccepted {
		_, err = t.DB.InsertOne(context.Background(), models.TeamMember{
			ID:                     primitive.NewObjectID(),
			CaseID:                 invitation.CaseID,
			UserID:                 invitation.InviteeID,
			Role:                   models.TeamRoleMember,
			ContributionPercentage: 0,
			JoinedAt:               now,
		})
		if err != nil {
			config.ErrorStatus("failed to add team member", http.StatusInternalServerError, w, err)
			return
		}
		go sendNotificationToUser(invitation.InviterID, map[string]interface{}{
			"type":   "invitation_accepted",
			"caseId": invitation.CaseID,
			"userId": invitation.InviteeID,
		})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Invitation " + newStatus,
	})
}

type removeMemberRequest struct {
	RequesterID string `json:"requesterId"`
}

// RemoveMemberHandler removes a member from the team. The leader removes
// others; a member removes themselves to leave. The leader can never be
// removed and cannot leave while other members remain.
func (t Team) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	memberID := mux.Vars(r)["member_id"]

	var req removeMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	target, err := t.DB.FindOne(context.Background(), bson.M{"caseId": caseID, "userId": memberID})
	if err != nil {
		config.ErrorStatus("failed to get team member", http.StatusNotFound, w, err)
		return
	}

	if target.Role == models.TeamRoleLeader {
		others, err := t.DB.CountDocuments(context.Background(), bson.M{"caseId": caseID, "userId": bson.M{"$ne": memberID}})
		if err != nil {
			config.ErrorStatus("failed to count team members", http.StatusInternalServerError, w, err)
			return
		}
		if req.RequesterID != memberID || others > 0 {
			config.ErrorStatus("the team leader cannot be removed", http.StatusForbidden, w, fmt.Errorf("leader removal blocked"))
			return
		}
	} else if req.RequesterID != memberID {
		requester, err := t.DB.FindOne(context.Background(), bson.M{"caseId": caseID, "userId": req.RequesterID})
		if err != nil || requester.Role != models.TeamRoleLeader {
			config.ErrorStatus("only the team leader can remove members", http.StatusForbidden, w, fmt.Errorf("requester is not the leader"))
			return
		}
	}

	if err := t.DB.DeleteOne(context.Background(), bson.M{"caseId": caseID, "userId": memberID}); err != nil {
		config.ErrorStatus("failed to remove team member", http.StatusInternalServerError, w, err)
		return
	}

	go sendNotificationToUser(memberID, map[string]interface{}{
		"type":   "team_removed",
		"caseId": caseID,
	})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Team member removed",
	})
}

type splitRequest struct {
	Splits map[string]int `json:"splits"`
}

// SetSplitHandler sets the reward contribution percentages for the whole
// team. The split must cover exactly the current member set and sum to
// exactly 100, otherwise nothing is written.
func (t Team) SetSplitHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	members, err := t.DB.Find(context.Background(), bson.M{"caseId": caseID})
	if err != nil {
		config.ErrorStatus("failed to get team members", http.StatusNotFound, w, err)
		return
	}
	if len(members) == 0 {
		config.ErrorStatus("case has no team", http.StatusNotFound, w, fmt.Errorf("no members for case %v", caseID))
		return
	}
	if len(req.Splits) != len(members) {
		config.ErrorStatus("split must cover every team member", http.StatusBadRequest, w, fmt.Errorf("got %v entries for %v members", len(req.Splits), len(members)))
		return
	}

	sum := 0
	for _, member := range members {
		pct, ok := req.Splits[member.UserID]
		if !ok {
			config.ErrorStatus("split is missing a team member", http.StatusBadRequest, w, fmt.Errorf("no entry for %v", member.UserID))
			return
		}
		if pct < 0 || pct > 100 {
			config.ErrorStatus("percentages must be between 0 and 100", http.StatusBadRequest, w, fmt.Errorf("got %v for %v", pct, member.UserID))
			return
		}
		sum += pct
	}
	if sum != 100 {
		config.ErrorStatus("split percentages must sum to 100", http.StatusBadRequest, w, fmt.Errorf("got %v", sum))
		return
	}

	for userID, pct := range req.Splits {
		_, err := t.DB.UpdateOne(context.Background(),
			bson.M{"caseId": caseID, "userId": userID},
			bson.M{"$set": bson.M{"contributionPercentage": pct}},
		)
		if err != nil {
			config.ErrorStatus("failed to update split", http.StatusInternalServerError, w, err)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Reward split updated",
	})
}

// EqualSplitHandler divides the reward evenly; the integer remainder goes to
// the leader. Three members split as 34/33/33.
func (t Team) EqualSplitHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	members, err := t.DB.Find(context.Background(), bson.M{"caseId": caseID})
	if err != nil {
		config.ErrorStatus("failed to get team members", http.StatusNotFound, w, err)
		return
	}
	if len(members) == 0 {
		config.ErrorStatus("case has no team", http.StatusNotFound, w, fmt.Errorf("no members for case %v", caseID))
		return
	}

	base := 100 / len(members)
	remainder := 100 % len(members)

	for _, member := range members {
		pct := base
		if member.Role == models.TeamRoleLeader {
			pct += remainder
		}
		_, err := t.DB.UpdateOne(context.Background(),
			bson.M{"caseId": caseID, "userId": member.UserID},
			bson.M{"$set": bson.M{"contributionPercentage": pct}},
		)
		if err != nil {
			config.ErrorStatus("failed to update split", http.StatusInternalServerError, w, err)
			return
		}
	}

	updated, err := t.DB.Find(context.Background(), bson.M{"caseId": caseID})
	if err != nil {
		config.ErrorStatus("failed to get team members", http.StatusNotFound, w, err)
		return
	}
	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ChatHandler returns the team chat history for a case
func (t Team) ChatHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	sort := bson.M{"createdAt": 1}
	messages, err := t.ChatDB.Find(context.Background(), bson.M{"caseId": caseID}, &options.FindOptions{Sort: sort})
	if err != nil {
		config.ErrorStatus("failed to get chat messages", http.StatusNotFound, w, err)
		return
	}
	if len(messages) == 0 {
		messages = []models.ChatMessage{}
	}

	b, err := json.Marshal(messages)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type chatMessageRequest struct {
	UserID string `json:"userId"`
	Body   string `json:"body"`
}

// PostChatHandler appends a message to the team chat and pushes it to the
// other members over the websocket feed
func (t Team) PostChatHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Body == "" {
		config.ErrorStatus("message body is required", http.StatusBadRequest, w, fmt.Errorf("empty body"))
		return
	}

	onTeam, err := t.DB.CountDocuments(context.Background(), bson.M{"caseId": caseID, "userId": req.UserID})
	if err != nil {
		config.ErrorStatus("failed to check team membership", http.StatusInternalServerError, w, err)
		return
	}
	if onTeam == 0 {
		config.ErrorStatus("only team members can post", http.StatusForbidden, w, fmt.Errorf("user %v not on team", req.UserID))
		return
	}

	message := models.ChatMessage{
		ID:        primitive.NewObjectID(),
		CaseID:    caseID,
		UserID:    req.UserID,
		Body:      req.Body,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	_, err = t.ChatDB.InsertOne(context.Background(), message)
	if err != nil {
		config.ErrorStatus("failed to post chat message", http.StatusInternalServerError, w, err)
		return
	}

	members, err := t.DB.Find(context.Background(), bson.M{"caseId": caseID})
	if err == nil {
		for _, member := range members {
			if member.UserID == req.UserID {
				continue
			}
			go sendNotificationToUser(member.UserID, map[string]interface{}{
				"type":    "team_chat",
				"caseId":  caseID,
				"message": message,
			})
		}
	}

	b, err := json.Marshal(message)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

func sendInvitationEmail(toEmail, caseTitle string) {
	from := mail.NewEmail("Unexplained Archive", "no-reply@unexplained-archive.com")
	subject := "You've been invited to join an investigation team"
	to := mail.NewEmail("", toEmail)
	plain := "You have been invited to join the investigation team for: " + caseTitle
	html := templates.RenderTeamInvitation(caseTitle)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	if _, err := client.Send(msg); err != nil {
		zap.S().Errorw("failed to send invitation email", "error", err)
	}
}
