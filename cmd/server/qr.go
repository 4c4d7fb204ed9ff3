package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/yahyatoraman/pictionary/internal/logger"
)

// serveQR renders the public join URL as a QR code, so players in the same
// room can hop in without typing an address.
func serveQR(publicURL string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		png, err := qrcode.Encode(publicURL, qrcode.Medium, 256)
		if err != nil {
			logger.Criticalf("failed to encode join QR code: %v", err)
			ctx.Status(http.StatusInternalServerError)
			return
		}
		ctx.Data(http.StatusOK, "image/png", png)
	}
}
