package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"soilsense/models"

	"github.com/go-resty/resty/v2"
)

const notifyTimeout = 25 * time.Second

// alertNotifier POSTs critical readings to ALERT_WEBHOOK_URL. Calls run in
// the background so ingestion never waits on the webhook.
type alertNotifier struct {
	client *resty.Client
	url    string
	wg     sync.WaitGroup
}

func newAlertNotifier(url string) *alertNotifier {
	client := resty.New().
		SetTimeout(notifyTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &alertNotifier{client: client, url: url}
}

func (n *alertNotifier) ReadingStored(ctx context.Context, r models.Reading) error {
	if r.Status != models.StatusCritical {
		return nil
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := n.send(sendCtx, r); err != nil {
			log.Println(err)
		}
	}()
	return nil
}

// wait blocks until every queued webhook call has finished.
func (n *alertNotifier) wait() { n.wg.Wait() }

func (n *alertNotifier) send(ctx context.Context, r models.Reading) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(alertWebhookReq{
			ReadingID:       r.ID.Hex(),
			DeviceID:        r.DeviceID,
			DeviceName:      r.DeviceName,
			FarmName:        r.FarmName,
			Location:        r.Location,
			Status:          r.Status,
			SoilHealth:      r.SoilHealth,
			Recommendations: r.Recommendations,
			Timestamp:       r.Timestamp,
		}).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("[notify] webhook call failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("[notify] webhook non-2xx: %s, body: %s", resp.Status(), resp.String())
	}
	return nil
}
