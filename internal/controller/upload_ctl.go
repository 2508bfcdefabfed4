package controller

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_admin_v1_202610/internal/api/dto"
	"shop_admin_v1_202610/internal/service"
	"shop_admin_v1_202610/pkg/utils"
)

type UploadController struct {
	adminSvc *service.AdminService
}

func NewUploadController(adminSvc *service.AdminService) *UploadController {
	return &UploadController{adminSvc: adminSvc}
}

// DeleteMediaReq 删除媒体
// 可以直接给 publicId，也可以给媒体 URL 由网关解析
type DeleteMediaReq struct {
	PublicID     string `json:"publicId"`
	URL          string `json:"url"`
	ResourceType string `json:"resourceType"`
}

// UploadImage 上传单张图片
// @Summary 上传图片
// @Tags Upload (媒体)
// @Accept multipart/form-data
// @Param image formData file true "图片"
// @Success 200 {object} dto.Result[dto.UploadImageResponse]
// @Router /api/upload/image [post]
func (c *UploadController) UploadImage(ctx *gin.Context) {
	fh, err := ctx.FormFile("image")
	if err != nil {
		badRequest(ctx, err)
		return
	}
	if !utils.IsImageType(fh.Header.Get("Content-Type")) {
		badRequest(ctx, fmt.Errorf("%s 不是图片", fh.Filename))
		return
	}

	f, closeFn, err := openUpload(fh)
	if err != nil {
		badRequest(ctx, err)
		return
	}
	defer closeFn()

	respond(ctx, http.StatusOK, c.adminSvc.UploadImage(ctx.Request.Context(), f))
}

// UploadImages 批量上传图片
// @Param images formData file true "图片 (可多个)"
// @Router /api/upload/images [post]
func (c *UploadController) UploadImages(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		badRequest(ctx, err)
		return
	}
	headers := form.File["images"]
	if len(headers) == 0 {
		badRequest(ctx, fmt.Errorf("缺少 images 字段"))
		return
	}

	files := make([]dto.UploadFile, 0, len(headers))
	for _, fh := range headers {
		if !utils.IsImageType(fh.Header.Get("Content-Type")) {
			badRequest(ctx, fmt.Errorf("%s 不是图片", fh.Filename))
			return
		}
		f, closeFn, err := openUpload(fh)
		if err != nil {
			badRequest(ctx, err)
			return
		}
		defer closeFn()
		files = append(files, f)
	}

	respond(ctx, http.StatusOK, c.adminSvc.UploadImages(ctx.Request.Context(), files))
}

// UploadVideo 上传视频
// @Param video formData file true "视频"
// @Router /api/upload/video [post]
func (c *UploadController) UploadVideo(ctx *gin.Context) {
	fh, err := ctx.FormFile("video")
	if err != nil {
		badRequest(ctx, err)
		return
	}
	if !utils.IsVideoType(fh.Header.Get("Content-Type")) {
		badRequest(ctx, fmt.Errorf("%s 不是视频", fh.Filename))
		return
	}

	f, closeFn, err := openUpload(fh)
	if err != nil {
		badRequest(ctx, err)
		return
	}
	defer closeFn()

	respond(ctx, http.StatusOK, c.adminSvc.UploadVideo(ctx.Request.Context(), f))
}

// DeleteMedia 删除媒体
// @Router /api/upload/media [delete]
func (c *UploadController) DeleteMedia(ctx *gin.Context) {
	var req DeleteMediaReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if req.PublicID == "" {
		req.PublicID = utils.ExtractPublicID(req.URL)
	}
	if req.PublicID == "" {
		badRequest(ctx, fmt.Errorf("无法识别媒体 publicId"))
		return
	}

	respond(ctx, http.StatusOK, c.adminSvc.DeleteMedia(ctx.Request.Context(), req.PublicID, req.ResourceType))
}

func openUpload(fh *multipart.FileHeader) (dto.UploadFile, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return dto.UploadFile{}, nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	return dto.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Reader:      f,
	}, func() { _ = f.Close() }, nil
}
