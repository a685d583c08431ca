package routes

import (
	"campus-bus-api-server/config"
	"campus-bus-api-server/internal/api/handlers"
	"campus-bus-api-server/internal/api/middleware"
	"campus-bus-api-server/internal/busrequest"
	"campus-bus-api-server/internal/models"
	"campus-bus-api-server/internal/s3"
	"campus-bus-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires handlers to the role-gated route groups.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.Server.ClientURL != "" {
		corsConfig.AllowOrigins = []string{cfg.Server.ClientURL}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	requestService := busrequest.NewService(db)

	userHandler := &handlers.UserHandler{DB: db, S3Uploader: s3Uploader}
	busHandler := &handlers.BusHandler{DB: db, Hub: wsHub, S3Uploader: s3Uploader}
	busRequestHandler := &handlers.BusRequestHandler{Service: requestService, Hub: wsHub, DB: db}
	feedbackHandler := &handlers.FeedbackHandler{DB: db, Hub: wsHub}
	complaintHandler := &handlers.ComplaintHandler{DB: db, Hub: wsHub}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/signup/student", userHandler.SignupStudent)
			auth.POST("/login", userHandler.Login)
		}

		// Routes below require a valid token.
		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate())
		{
			profile := protected.Group("/profile")
			{
				profile.GET("/", userHandler.GetProfile)
				profile.PUT("/", userHandler.UpdateProfile)
			}

			// Bus-request lifecycle.
			requests := protected.Group("/bus-requests")
			{
				studentRequests := requests.Group("/")
				studentRequests.Use(middleware.Authorize(models.RoleStudent))
				{
					studentRequests.POST("/request", busRequestHandler.CreateRequest)
					studentRequests.GET("/mine", busRequestHandler.MyRequests)
					studentRequests.DELETE("/:requestId", busRequestHandler.CancelRequest)
				}

				driverRequests := requests.Group("/")
				driverRequests.Use(middleware.Authorize(models.RoleDriver))
				{
					driverRequests.GET("/driver/requests", busRequestHandler.DriverRequests)
					driverRequests.POST("/:requestId/accept", busRequestHandler.AcceptRequest)
					driverRequests.POST("/:requestId/reject", busRequestHandler.RejectRequest)
					driverRequests.POST("/:requestId/board", busRequestHandler.BoardRequest)
					driverRequests.GET("/bus/:busId/passengers", busRequestHandler.BusPassengers)
					driverRequests.GET("/bus/:busId/passengers/count", busRequestHandler.BusPassengerCount)
				}
			}

			// Fleet reads for any logged-in role.
			buses := protected.Group("/buses")
			{
				buses.GET("/", busHandler.GetAllBuses)
				buses.GET("/locations", busHandler.GetAllBusLocations)
				buses.GET("/:busId", busHandler.GetBusByID)
				buses.GET("/:busId/location", busHandler.GetBusLocation)

				driverBuses := buses.Group("/")
				driverBuses.Use(middleware.Authorize(models.RoleDriver))
				{
					driverBuses.POST("/:busId/location", busHandler.UpdateLocation)
				}
			}

			// Student-only message surface.
			student := protected.Group("/student")
			student.Use(middleware.Authorize(models.RoleStudent))
			{
				student.POST("/feedback", feedbackHandler.SendFeedback)
				student.POST("/complaints", complaintHandler.SendComplaint)
			}

			// Driver feedback and complaint inbox.
			driver := protected.Group("/driver")
			driver.Use(middleware.Authorize(models.RoleDriver))
			{
				driver.GET("/feedback", feedbackHandler.ListDriverFeedback)
				driver.POST("/feedback/:feedbackId/read", feedbackHandler.MarkFeedbackRead)
				driver.POST("/feedback/:feedbackId/respond", feedbackHandler.RespondFeedback)
				driver.GET("/complaints", complaintHandler.ListDriverComplaints)
				driver.POST("/profile/photo", userHandler.UploadProfilePhoto)
			}

			// Management console.
			management := protected.Group("/management")
			management.Use(middleware.Authorize(models.RoleManagement))
			{
				fleet := management.Group("/buses")
				{
					fleet.POST("/", busHandler.CreateBus)
					fleet.PUT("/:busId", busHandler.UpdateBus)
					fleet.DELETE("/:busId", busHandler.DeleteBus)
					fleet.POST("/:busId/photo", busHandler.UploadBusPhoto)
				}

				management.GET("/students", busHandler.GetStudents)
				management.POST("/students/assign-bus", busHandler.AssignStudentBus)

				management.GET("/feedback", feedbackHandler.ListAdminFeedback)
				management.POST("/feedback/:feedbackId/read", feedbackHandler.MarkFeedbackRead)
				management.POST("/feedback/:feedbackId/respond", feedbackHandler.RespondFeedback)
				management.POST("/feedback/:feedbackId/status", feedbackHandler.UpdateFeedbackStatus)

				management.GET("/complaints", complaintHandler.ListComplaints)
				management.POST("/complaints/:complaintId/read", complaintHandler.MarkComplaintRead)
				management.POST("/complaints/:complaintId/status", complaintHandler.UpdateComplaintStatus)
			}
		}
	}

	return router
}
