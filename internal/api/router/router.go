package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"profile-agent-go/internal/api/handler"
	"profile-agent-go/internal/config"
	"profile-agent-go/internal/types"
)

// RegisterRoutes 注册API路由。
// 配置了Server.APIKey时，/api/v1 下的接口启用Bearer鉴权，健康检查始终公开。
func RegisterRoutes(h *server.Hertz, cfg *config.Config, profileHandler *handler.ProfileHandler) {
	api := h.Group("/api/v1")

	// 健康检查在鉴权中间件之前注册，始终公开
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	if cfg.Server.APIKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				return key == cfg.Server.APIKey, nil
			}),
		))
	}

	api.POST("/profile/analyze", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := profileHandler.HandleAnalyze(c, file, fileHeader.Size, fileHeader.Filename)
		if err != nil {
			switch {
			case errors.Is(err, handler.ErrUnsupportedFileType),
				errors.Is(err, handler.ErrFileTooLarge):
				ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			case types.IsOracleUnavailable(err):
				ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "上游模型服务不可用，请稍后重试"})
			default:
				ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			}
			return
		}

		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/analyses/:id", func(c context.Context, ctx *app.RequestContext) {
		resp, err := profileHandler.HandleGetAnalysis(c, ctx.Param("id"))
		if err != nil {
			writeRecordError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/analyses", func(c context.Context, ctx *app.RequestContext) {
		fileMD5 := ctx.Query("md5")
		if fileMD5 == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少md5参数"})
			return
		}
		records, err := profileHandler.HandleListAnalyses(c, fileMD5)
		if err != nil {
			writeRecordError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"records": records})
	})

	api.GET("/analyses/:id/original", func(c context.Context, ctx *app.RequestContext) {
		data, filename, err := profileHandler.HandleGetOriginal(c, ctx.Param("id"))
		if err != nil {
			writeRecordError(ctx, err)
			return
		}
		ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		ctx.Data(consts.StatusOK, "application/octet-stream", data)
	})
}

// writeRecordError 把历史记录接口的错误映射成HTTP状态码
func writeRecordError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, handler.ErrAnalysisNotFound):
		ctx.JSON(consts.StatusNotFound, utils.H{"error": err.Error()})
	case errors.Is(err, handler.ErrRecordStoreDisabled):
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": err.Error()})
	default:
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
	}
}
