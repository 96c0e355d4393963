package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"vetra_back_end/internal/database"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// UploadImage envoie un fichier multipart dans le bucket MinIO sous un
// préfixe (products/, profiles/) et retourne l'URL publique enregistrée
// sur le document.
func UploadImage(ctx context.Context, prefix string, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Nom d'objet unique pour éviter les collisions entre uploads
	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), filepath.Ext(file.Filename))
	bucket := os.Getenv("MINIO_BUCKET")

	_, err = database.MinIO.PutObject(ctx, bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	scheme := "http"
	if os.Getenv("MINIO_USE_SSL") == "true" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, os.Getenv("MINIO_ENDPOINT"), bucket, objectName), nil
}
