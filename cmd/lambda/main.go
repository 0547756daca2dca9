package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"lavishtravels/internal/config"
	"lavishtravels/internal/logger"
	"lavishtravels/internal/serverless"
	"lavishtravels/internal/services"
	"lavishtravels/internal/templates"
)

func main() {
	lambda.Start(newHandler().Handle)
}

// newHandler wires the services once per cold start. A configuration error
// does not stop the function: every invocation reports it instead.
func newHandler() *serverless.Handler {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Config{Format: "prod", ServiceName: "lavish-travels-lambda"})
		logger.Named("lambda").Error("configuration failed", zap.Error(err))
		return serverless.NewUnconfiguredHandler(err)
	}

	// Lambda ships stdout to CloudWatch; no log file.
	logger.Init(logger.Config{
		Format:      "prod",
		Level:       cfg.Log.Level,
		ServiceName: "lavish-travels-lambda",
		Version:     cfg.App.Version,
	})

	emailSvc := services.NewEmailService(&cfg.Email)
	notificationSvc := services.NewNotificationService(&cfg.Email, emailSvc, templates.NewStoreFromConfig(cfg.Templates.Dir))
	return serverless.NewHandler(services.NewInquiryService(notificationSvc))
}
