package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	"github.com/unexplained-archive/unexplained-archive-api/models"
)

// CloudinaryHandler handles Cloudinary related requests
type CloudinaryHandler struct {
	DB databases.CaseDatabase
}

// GenerateSignature generates a signature for Cloudinary uploads
func (c CloudinaryHandler) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	// Create the signature
	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	// Respond with the timestamp and signature
	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// UploadEvidenceHandler pushes an uploaded file to Cloudinary and attaches
// the resulting URL to the case's evidence list
func (c CloudinaryHandler) UploadEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	if _, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID}); err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	// 32 MB in-memory cap, larger parts spill to disk
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("file is required", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	uploaderID := r.FormValue("uploaderId")
	fileType := header.Header.Get("Content-Type")

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		config.ErrorStatus("failed to init cloudinary", http.StatusInternalServerError, w, err)
		return
	}

	uploadResp, err := cld.Upload.Upload(r.Context(), file, uploader.UploadParams{
		Folder:   "evidence/" + caseID,
		PublicID: header.Filename,
	})
	if err != nil {
		config.ErrorStatus("failed to upload evidence", http.StatusBadGateway, w, err)
		return
	}

	evidence := models.EvidenceFile{
		URL:        uploadResp.SecureURL,
		Name:       header.Filename,
		Type:       fileType,
		Uploader:   uploaderID,
		UploadedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	_, err = c.DB.UpdateOne(context.Background(), bson.M{"_id": cID},
		bson.M{
			"$push": bson.M{"evidence": evidence},
			"$set":  bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to attach evidence", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(evidence)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}
