package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported audio file type")
	ErrNoFile              = errors.New("no file provided")
)

const maxFileNameSize = 255

// AudioValidator checks an uploaded file against the configured audio
// allow-list before anything is written to either store. Both the declared
// Content-Type header and the sniffed content must match the list. Returns
// the opened file rewound to the start, along with an HTTP status code to
// use when validation fails.
func AudioValidator(fh *multipart.FileHeader) (int, multipart.File, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoFile
	}

	allowed := viper.GetStringSlice("upload.allowed_types")

	// Check headers first which is easy to spoof, but faster for legit clients
	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "audio/") || !typeAllowed(ct, allowed) {
		return http.StatusBadRequest, nil, ErrFileTypeUnsupported
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, ErrFileNameTooLong
	}

	if fh.Size > viper.GetInt64("upload.max_size") {
		return http.StatusRequestEntityTooLarge, nil, ErrFileTooLarge
	}

	// And now do the checks on the actual bytes to avoid
	// malicious clients
	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	if !mimeAllowed(mime, allowed) {
		f.Close()
		return http.StatusBadRequest, nil, ErrFileTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	return 0, f, nil
}

func typeAllowed(ct string, allowed []string) bool {
	// Strip any parameters like codecs=opus before comparing
	if i := strings.Index(ct, ";"); i != -1 {
		ct = strings.TrimSpace(ct[:i])
	}

	for _, t := range allowed {
		if strings.EqualFold(ct, t) {
			return true
		}
	}

	return false
}

func mimeAllowed(m *mimetype.MIME, allowed []string) bool {
	// mimetype.Is resolves aliases like audio/x-wav vs audio/wav
	for _, t := range allowed {
		if m.Is(t) {
			return true
		}
	}

	return false
}
