package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	openai "github.com/sashabaranov/go-openai"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
)

// Analysis exported for testing purposes
type Analysis struct {
	DB databases.CaseDatabase
	AI *openai.Client
}

// AnalyzeCaseHandler runs the case description through the language model
// and stores the produced summary on the case
func (a Analysis) AnalyzeCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	caseDoc, err := a.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	prompt := fmt.Sprintf(
		"Summarize the following unexplained incident report, list plausible mundane explanations, and note what evidence would help confirm or rule them out.\n\nTitle: %s\nCategory: %s\nLocation: %s\n\nDescription:\n%s\n\n%s",
		caseDoc.Title, caseDoc.Category, caseDoc.Location, caseDoc.Description, caseDoc.DetailedDescription,
	)

	resp, err := a.AI.CreateChatCompletion(r.Context(), openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a skeptical investigator assisting a crowdsourced archive of unexplained events."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		config.ErrorStatus("failed to analyze case", http.StatusBadGateway, w, err)
		return
	}
	if len(resp.Choices) == 0 {
		config.ErrorStatus("failed to analyze case", http.StatusBadGateway, w, fmt.Errorf("empty completion"))
		return
	}
	analysis := resp.Choices[0].Message.Content

	_, err = a.DB.UpdateOne(context.Background(), bson.M{"_id": cID},
		bson.M{"$set": bson.M{"analysis": analysis, "updatedAt": primitive.NewDateTimeFromTime(time.Now())}},
	)
	if err != nil {
		zap.S().Warnw("failed to store case analysis", "caseId", caseID, "error", err)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"caseId":   caseID,
		"analysis": analysis,
	})
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
}

// TranslateHandler translates arbitrary text, used by the frontend for
// reports filed in another language
func (a Analysis) TranslateHandler(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Text == "" || req.TargetLang == "" {
		config.ErrorStatus("text and targetLang are required", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	resp, err := a.AI.CreateChatCompletion(r.Context(), openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Translate the user's text to " + req.TargetLang + ". Reply with the translation only."},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
	})
	if err != nil {
		config.ErrorStatus("failed to translate text", http.StatusBadGateway, w, err)
		return
	}
	if len(resp.Choices) == 0 {
		config.ErrorStatus("failed to translate text", http.StatusBadGateway, w, fmt.Errorf("empty completion"))
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"translation": resp.Choices[0].Message.Content,
		"targetLang":  req.TargetLang,
	})
}
