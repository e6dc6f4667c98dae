package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"customer-api/pkg/lambda"
)

var manager = lambda.GetConnectionManager()

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	adapter, err := manager.Adapter(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize container")
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"Internal server error","message":"Service failed to initialize"}`,
		}, nil
	}

	return adapter.Proxy(ctx, event)
}

func main() {
	gin.SetMode(gin.ReleaseMode)
	awslambda.Start(handler)
}
