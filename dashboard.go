package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mau.fi/whatsmeow"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// handlePairAPI wipes this bot's device row and starts phone pairing,
// returning the code the user types into WhatsApp.
func handlePairAPI(c *gin.Context) {
	var req struct {
		Number string `json:"number"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "number missing"})
		return
	}
	num := strings.ReplaceAll(req.Number, "+", "")

	fmt.Printf("🧹 [Cleanup] Wiping identity: %s for number: %s\n", BOT_TAG, num)

	devices, _ := container.GetAllDevices(context.Background())
	for _, dev := range devices {
		if dev.PushName == BOT_TAG {
			container.DeleteDevice(context.Background(), dev)
		}
	}

	newStore := container.NewDevice()
	newStore.PushName = BOT_TAG

	if client.IsConnected() {
		client.Disconnect()
	}
	client = whatsmeow.NewClient(newStore, waLog.Stdout("Client", "INFO", true))
	client.AddEventHandler(eventHandler)
	client.Connect()

	time.Sleep(10 * time.Second)
	code, err := client.PairPhone(context.Background(), num, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"code": code})
}

func handleStatsAPI(c *gin.Context) {
	st := downloads.Stats()
	c.JSON(200, gin.H{
		"users":       users.Count(),
		"downloads":   st.Total,
		"split":       st.Split,
		"total_bytes": st.TotalBytes,
		"blocked":     len(blocklist.All()),
		"uptime":      time.Since(startTime).Round(time.Second).String(),
		"connected":   client != nil && client.IsConnected(),
	})
}
