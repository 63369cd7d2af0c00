package server

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"failmarket/internal/utils"
	"failmarket/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var allowedImageFolders = map[string]bool{
	"profiles": true,
	"projects": true,
}

type presignResponse struct {
	PresignedURL string `json:"presigned_url"`
	PublicURL    string `json:"public_url"`
	Key          string `json:"key"`
}

// handlePresignImage issues a presigned S3 PUT for a profile or project
// image. The returned public URL is what the client later stores on the
// project or profile as an opaque image reference.
func (s *Service) handlePresignImage(w http.ResponseWriter, r *http.Request) {
	var input types.PresignInput
	if err := decodeJSON(r, &input); err != nil {
		s.respondDomainError(w, err)
		return
	}

	if !allowedImageFolders[input.Folder] {
		s.respondDomainError(w, fmt.Errorf("folder must be profiles or projects: %w", types.ErrValidation))
		return
	}

	ext, ok := allowedImageTypes[input.ContentType]
	if !ok {
		s.respondDomainError(w, fmt.Errorf("content type %q is not an allowed image type: %w", input.ContentType, types.ErrValidation))
		return
	}

	if fromName := strings.ToLower(path.Ext(input.Filename)); fromName != "" {
		ext = fromName
	}

	key := fmt.Sprintf("%s/%s%s", input.Folder, utils.NanoIDSize(21), ext)

	presigned, err := s.presignClient.PresignPutObject(r.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(input.ContentType),
	}, s3.WithPresignExpires(time.Duration(s.config.PresignTTLSec)*time.Second))
	if err != nil {
		s.logger.WithError(err).Error("failed to presign image upload")
		s.respondError(w, http.StatusInternalServerError, "failed to presign upload")
		return
	}

	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.S3Bucket, s.config.S3Region, key)

	s.respond(w, http.StatusOK, "upload url issued", presignResponse{
		PresignedURL: presigned.URL,
		PublicURL:    publicURL,
		Key:          key,
	})
}
