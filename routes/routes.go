package routes

import (
	"procurement-receipt-api/controllers"
	"procurement-receipt-api/middleware"
	"procurement-receipt-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// Public routes
		public := api.Group("")
		{
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Procurement Receipt API is running",
				})
			})

			auth := public.Group("/auth")
			{
				auth.POST("/login", controllers.Login)
				auth.POST("/register/vendor", controllers.RegisterVendor)
			}
		}

		// Protected routes (require authentication)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			auth := protected.Group("/auth")
			{
				auth.GET("/verify", controllers.Verify)
				auth.GET("/profile", controllers.GetProfile)
				auth.POST("/change-password", controllers.ChangePassword)
			}

			// Goods receipts ("bapb")
			bapb := protected.Group("/bapb")
			{
				bapb.GET("", controllers.ListGoodsReceipts)
				bapb.GET("/:id", controllers.GetGoodsReceipt)
				bapb.GET("/download/:id", controllers.DownloadGoodsReceipt)
				bapb.POST("", middleware.RequireRole(models.RoleVendor), controllers.CreateGoodsReceipt)
				bapb.PUT("/:id", middleware.RequireRole(models.RoleVendor), controllers.UpdateGoodsReceipt)
				bapb.DELETE("/:id", middleware.RequireRole(models.RoleVendor), controllers.DeleteGoodsReceipt)
				bapb.PATCH("/:id/submit", middleware.RequireRole(models.RoleVendor), controllers.SubmitGoodsReceipt)
				bapb.PATCH("/:id/review", middleware.RequireRole(models.RoleInspector), controllers.ReviewGoodsReceipt)
				bapb.PATCH("/:id/approve", middleware.RequireRole(models.RoleInspector), controllers.ApproveGoodsReceipt)
				bapb.PATCH("/:id/reject", middleware.RequireRole(models.RoleInspector), controllers.RejectGoodsReceipt)
			}

			// Work receipts ("bapp")
			bapp := protected.Group("/bapp")
			{
				bapp.GET("", controllers.ListWorkReceipts)
				bapp.GET("/overview-direksi", middleware.RequireRole(models.RoleExecutive), controllers.OverviewDireksi)
				bapp.GET("/:id", controllers.GetWorkReceipt)
				bapp.GET("/download/:id", controllers.DownloadWorkReceipt)
				bapp.POST("", middleware.RequireRole(models.RoleVendor), controllers.CreateWorkReceipt)
				bapp.PUT("/:id", middleware.RequireRole(models.RoleVendor), controllers.UpdateWorkReceipt)
				bapp.DELETE("/:id", middleware.RequireRole(models.RoleVendor), controllers.DeleteWorkReceipt)
				bapp.PATCH("/:id/submit", middleware.RequireRole(models.RoleVendor), controllers.SubmitWorkReceipt)
				bapp.PATCH("/:id/approve-direksi", middleware.RequireRole(models.RoleExecutive), controllers.ApproveWorkReceipt)
				bapp.PATCH("/:id/reject", middleware.RequireRole(models.RoleExecutive), controllers.RejectWorkReceipt)
			}

			// Cross-kind views
			documents := protected.Group("/documents")
			{
				documents.GET("/combined", controllers.CombinedDocuments)
				documents.GET("/history", controllers.DocumentHistory)
				documents.GET("/stats", controllers.DocumentStats)
			}

			// Attachments
			upload := protected.Group("/upload")
			{
				upload.POST("/signature", middleware.RequireRole(models.RoleInspector), controllers.UploadSignature)
				upload.GET("/download/:id", controllers.DownloadAttachment)
				upload.POST("/:kind/:id", middleware.RequireRole(models.RoleVendor), controllers.UploadAttachments)
				upload.GET("/:kind/:id/list", controllers.ListAttachments)
				upload.DELETE("/:id", middleware.RequireRole(models.RoleVendor), controllers.DeleteAttachment)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.ListNotifications)
				notifications.PATCH("/read-all", controllers.MarkAllNotificationsRead)
				notifications.PATCH("/:id/read", controllers.MarkNotificationRead)
				notifications.GET("/vapid-key", controllers.VapidKey)
				notifications.POST("/subscribe", controllers.SubscribePush)
			}
		}
	}
}
