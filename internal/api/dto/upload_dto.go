package dto

import "io"

// UploadFile 待上传文件
type UploadFile struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// UploadImageResponse POST /upload/image
type UploadImageResponse struct {
	ImageURL string `json:"imageUrl"`
	PublicID string `json:"publicId"`
}

// UploadImagesResponse POST /upload/images
type UploadImagesResponse struct {
	Images    []string `json:"images"`
	PublicIDs []string `json:"publicIds,omitempty"`
}

// UploadVideoResponse POST /upload/video
type UploadVideoResponse struct {
	VideoURL string `json:"videoUrl"`
	PublicID string `json:"publicId"`
}

// 媒体类型
const (
	ResourceImage = "image"
	ResourceVideo = "video"
)

// DeleteMediaRequest DELETE /upload/media
type DeleteMediaRequest struct {
	PublicID     string `json:"publicId"`
	ResourceType string `json:"resourceType"`
}

// DeleteMediaResponse 删除媒体响应
type DeleteMediaResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Result  string `json:"result,omitempty"`
}
