package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"voiceguard/audio-api/model"

	"github.com/stretchr/testify/require"
)

func TestUploadAndFetchRoundTrip(t *testing.T) {
	a, blobs := newTestAPI(t, "audioroundtrip")
	token := signupAndLogin(t, a, "a@x.com")

	w := doUpload(t, a, token, "clip.wav", "audio/wav", wavBytes)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, "clip.wav", body["filename"])
	require.Equal(t, "audio/wav", body["contentType"])
	require.Contains(t, []any{model.ResultDeepfake, model.ResultAuthentic}, body["result"])

	confidence := body["confidence"].(float64)
	require.GreaterOrEqual(t, confidence, float64(0))
	require.LessOrEqual(t, confidence, float64(100))

	id := body["id"].(string)
	require.NotEmpty(t, id)
	require.Equal(t, 1, blobs.count())

	// Fetch the blob back by the returned metadata id
	w = doJSON(t, a, http.MethodGet, "/audio/file/"+id, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	require.Equal(t, wavBytes, w.Body.Bytes())
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	a, blobs := newTestAPI(t, "audioreject")
	token := signupAndLogin(t, a, "a@x.com")

	w := doUpload(t, a, token, "notes.txt", "text/plain", []byte("hello"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Rejection happens before anything is written to either store
	var count int64
	require.NoError(t, a.DB.Model(model.AudioFile{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
	require.Equal(t, 0, blobs.count())
}

func TestUploadBlobFailureKeepsMetadata(t *testing.T) {
	a, _ := newTestAPI(t, "audioblobfail")
	token := signupAndLogin(t, a, "a@x.com")

	a.Store = failingStore{}

	w := doUpload(t, a, token, "clip.wav", "audio/wav", wavBytes)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "File upload failed", decodeBody(t, w)["error"])

	// The record written ahead of the blob stays behind, there is no rollback
	var recs []model.AudioFile
	require.NoError(t, a.DB.Find(&recs).Error)
	require.Len(t, recs, 1)
	require.Equal(t, "clip.wav", recs[0].Filename)
}

func TestUploadWithoutFile(t *testing.T) {
	a, _ := newTestAPI(t, "audionofile")
	token := signupAndLogin(t, a, "a@x.com")

	w := doUpload(t, a, token, "clip.wav", "audio/wav", wavBytes)
	require.Equal(t, http.StatusOK, w.Code)

	// Multipart body with the wrong field name counts as no file
	w = doUploadField(t, a, token, "file", "clip.wav", "audio/wav", wavBytes)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRequiresAuth(t *testing.T) {
	a, _ := newTestAPI(t, "audioauth")

	w := doUpload(t, a, "", "clip.wav", "audio/wav", wavBytes)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doUpload(t, a, "not-a-real-token", "clip.wav", "audio/wav", wavBytes)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecentFilesLimitAndOrder(t *testing.T) {
	a, _ := newTestAPI(t, "audiorecent")
	token := signupAndLogin(t, a, "a@x.com")

	var me model.User
	require.NoError(t, a.DB.Where("email = ?", "a@x.com").First(&me).Error)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		require.NoError(t, a.DB.Create(&model.AudioFile{
			ID:          fmt.Sprintf("file-%02d", i),
			UserID:      me.ID,
			Filename:    fmt.Sprintf("clip-%02d.wav", i),
			ContentType: "audio/wav",
			Size:        int64(len(wavBytes)),
			Confidence:  90,
			Result:      model.ResultAuthentic,
			UploadDate:  base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	// Another user's file must never show up
	require.NoError(t, a.DB.Create(&model.AudioFile{
		ID:          "file-other",
		UserID:      "someone-else",
		Filename:    "other.wav",
		ContentType: "audio/wav",
		Confidence:  90,
		Result:      model.ResultAuthentic,
		UploadDate:  time.Now(),
	}).Error)

	w := doJSON(t, a, http.MethodGet, "/audio/recent-files", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []model.AudioFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 5)

	for i, e := range entries {
		// Newest first: file-06 down to file-02
		require.Equal(t, fmt.Sprintf("file-%02d", 6-i), e.ID)
		require.Equal(t, me.ID, e.UserID)
	}
}

func TestFetchUnknownID(t *testing.T) {
	a, _ := newTestAPI(t, "audiomissing")
	token := signupAndLogin(t, a, "a@x.com")

	w := doJSON(t, a, http.MethodGet, "/audio/file/does-not-exist", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeDoesNotCacheMisses(t *testing.T) {
	a, blobs := newTestAPI(t, "audiocachemiss")
	token := signupAndLogin(t, a, "a@x.com")

	w := doJSON(t, a, http.MethodGet, "/audio/file/late-blob", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)

	var me model.User
	require.NoError(t, a.DB.Where("email = ?", "a@x.com").First(&me).Error)
	require.NoError(t, a.DB.Create(&model.AudioFile{
		ID:          "late-blob",
		UserID:      me.ID,
		Filename:    "late.wav",
		ContentType: "audio/wav",
		Size:        int64(len(wavBytes)),
		Confidence:  90,
		Result:      model.ResultAuthentic,
		UploadDate:  time.Now(),
	}).Error)
	require.NoError(t, blobs.Put(context.Background(), "late-blob", bytes.NewReader(wavBytes), int64(len(wavBytes)), "audio/wav"))

	// The earlier 404 must not shadow the blob once it exists
	w = doJSON(t, a, http.MethodGet, "/audio/file/late-blob", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, wavBytes, w.Body.Bytes())
}

func TestFetchBulk(t *testing.T) {
	a, _ := newTestAPI(t, "audiobulk")
	token := signupAndLogin(t, a, "a@x.com")

	var me model.User
	require.NoError(t, a.DB.Where("email = ?", "a@x.com").First(&me).Error)

	names := []string{"banana.wav", "apple.wav", "cherry.wav"}
	for i, n := range names {
		require.NoError(t, a.DB.Create(&model.AudioFile{
			ID:          fmt.Sprintf("bulk-%d", i),
			UserID:      me.ID,
			Filename:    n,
			ContentType: "audio/wav",
			Confidence:  85,
			Result:      model.ResultAuthentic,
			UploadDate:  time.Now().Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	w := doJSON(t, a, http.MethodGet, "/audio/files?sort=az", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []model.AudioFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 3)
	require.Equal(t, "apple.wav", entries[0].Filename)
	require.Equal(t, "banana.wav", entries[1].Filename)
	require.Equal(t, "cherry.wav", entries[2].Filename)

	w = doJSON(t, a, http.MethodGet, "/audio/files?limit=2&page=1&sort=oldest", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	entries = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "cherry.wav", entries[0].Filename)

	w = doJSON(t, a, http.MethodGet, "/audio/files?sort=sideways", nil, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHeartbeat(t *testing.T) {
	a, _ := newTestAPI(t, "heartbeat")

	w := doJSON(t, a, http.MethodHead, "/api/heartbeat", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}
