package notifications

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"elections/config"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

var (
	client      *apns2.Client
	initialized bool
)

// InitAPNS initializes the APNs client from the configured P8 key. Push
// notifications stay disabled when no key path is configured.
func InitAPNS() error {
	if initialized {
		return nil
	}
	if config.AuthKeyPath == "" {
		return fmt.Errorf("APNs key path not configured")
	}

	bytes, err := os.ReadFile(config.AuthKeyPath)
	if err != nil {
		return fmt.Errorf("unable to read APNs key file: %v", err)
	}

	authKey, err := token.AuthKeyFromBytes(bytes)
	if err != nil {
		return fmt.Errorf("unable to load APNs key: %v", err)
	}

	client = apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   config.AuthKeyID,
		TeamID:  config.TeamID,
	}).Production()
	initialized = true
	log.Println("APNs client initialized successfully")
	return nil
}

// SendElectionNotification pushes an election alert to a single device.
func SendElectionNotification(deviceToken, title, body, electionID string) error {
	if !initialized {
		if err := InitAPNS(); err != nil {
			return err
		}
	}
	if deviceToken == "" {
		return fmt.Errorf("empty device token")
	}

	p := payload.NewPayload()
	p.AlertTitle(title)
	p.AlertBody(body)
	p.Sound("default")
	p.Category("ELECTION")
	p.Custom("electionID", electionID)

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       config.APNSTopic,
		Payload:     p,
	}

	res, err := client.Push(notification)
	if err != nil {
		return err
	}
	if !res.Sent() {
		return fmt.Errorf("APNs rejected notification: %s", res.Reason)
	}
	return nil
}

// NotifyRegisteredDevices pushes an alert to every voter with a registered
// device token. Failures are logged per device and never propagated; a missed
// notification must not fail the admin action that triggered it.
func NotifyRegisteredDevices(db *sql.DB, title, body, electionID string) {
	rows, err := db.Query(`
		SELECT device_token FROM voters
		WHERE device_token IS NOT NULL AND device_token != ''
	`)
	if err != nil {
		log.Printf("Error loading device tokens: %v", err)
		return
	}
	defer rows.Close()

	sent := 0
	for rows.Next() {
		var deviceToken string
		if err := rows.Scan(&deviceToken); err != nil {
			log.Printf("Error scanning device token: %v", err)
			continue
		}
		if err := SendElectionNotification(deviceToken, title, body, electionID); err != nil {
			log.Printf("Failed to notify device: %v", err)
			continue
		}
		sent++
	}
	log.Printf("Sent %d election notifications for election %s", sent, electionID)
}
