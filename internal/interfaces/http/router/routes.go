// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers) {
	// 项目管理
	projects := v1.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/:pid", h.Project.GetProject)
		projects.PUT("/:pid", h.Project.UpdateProject)
		projects.DELETE("/:pid", h.Project.DeleteProject)

		// 项目动画描述
		projects.GET("/:pid/brief", h.Project.GetBrief)
		projects.PUT("/:pid/brief", h.Project.UploadBrief)

		// 项目下的脚本版本
		projects.GET("/:pid/scripts", h.Script.ListScripts)
		projects.GET("/:pid/scripts/current", h.Script.GetCurrentScript)
		projects.GET("/:pid/scripts/versions/:version", h.Script.GetScriptByVersion)
		projects.GET("/:pid/scripts/:sid", h.Script.GetScript)
		projects.DELETE("/:pid/scripts/:sid", h.Script.DeleteScript)
		projects.GET("/:pid/scripts/:sid/source", h.Script.DownloadScript)
		projects.POST("/:pid/scripts/:sid/activate", h.Script.ActivateScript)

		// 脚本生成
		projects.POST("/:pid/scripts/generate", h.Generation.GenerateScript)
		projects.POST("/:pid/scripts/refine", h.Generation.RefineScript)
		projects.GET("/:pid/scripts/stream", h.Stream.StreamScript) // SSE

		// 项目下的任务
		projects.GET("/:pid/jobs", h.Job.ListProjectJobs)
		projects.GET("/:pid/jobs/stats", h.Job.GetJobStats)
	}

	// 任务管理
	jobs := v1.Group("/jobs")
	{
		jobs.GET("/:jid", h.Job.GetJob)
		jobs.POST("/:jid/cancel", h.Job.CancelJob)
	}

	// 参考片段库
	snippets := v1.Group("/snippets")
	{
		snippets.GET("", h.Snippet.ListSnippets)
		snippets.POST("", h.Snippet.CreateSnippet)
		snippets.POST("/search", h.Snippet.SearchSnippets)
		snippets.POST("/index", h.Snippet.IndexSnippets)
		snippets.GET("/:snid", h.Snippet.GetSnippet)
		snippets.PUT("/:snid", h.Snippet.UpdateSnippet)
		snippets.DELETE("/:snid", h.Snippet.DeleteSnippet)
	}
}
