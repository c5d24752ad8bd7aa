package store

import (
	"context"
	"fmt"

	"soilsense/models"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const influxMeasurement = "soil_reading"

// InfluxMirror copies every stored reading into an InfluxDB bucket as one
// point, for dashboards that want raw time series.
type InfluxMirror struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
	bucket string
}

func NewInfluxMirror(url, token, org, bucket string) *InfluxMirror {
	client := influxdb2.NewClient(url, token)
	return &InfluxMirror{
		client: client,
		writer: client.WriteAPIBlocking(org, bucket),
		bucket: bucket,
	}
}

// Ping checks the server health once at startup.
func (m *InfluxMirror) Ping(ctx context.Context) error {
	health, err := m.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influxdb health: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("influxdb health check failed: %s", msg)
	}
	return nil
}

func (m *InfluxMirror) ReadingStored(ctx context.Context, r models.Reading) error {
	p := readingPoint(r)
	if p == nil {
		return nil
	}
	if err := m.writer.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("[influx] write %s to %s: %w", r.DeviceID, m.bucket, err)
	}
	return nil
}

func (m *InfluxMirror) Close() { m.client.Close() }

// readingPoint returns nil when the reading has no numeric field at all.
func readingPoint(r models.Reading) *write.Point {
	fields := make(map[string]interface{})
	for _, name := range models.MeasurementNames {
		if v, ok := r.Measurements.Value(name); ok {
			fields[string(name)] = v
		}
	}
	if r.Battery != nil {
		if r.Battery.Level != nil {
			fields["battery_level"] = *r.Battery.Level
		}
		if r.Battery.Voltage != nil {
			fields["battery_voltage"] = *r.Battery.Voltage
		}
	}
	if r.Connection != nil {
		if r.Connection.RSSI != nil {
			fields["rssi"] = *r.Connection.RSSI
		}
		if r.Connection.SignalStrength != nil {
			fields["signal_strength"] = *r.Connection.SignalStrength
		}
	}
	if len(fields) == 0 {
		return nil
	}

	tags := map[string]string{
		"device_id":   r.DeviceID,
		"status":      string(r.Status),
		"soil_health": string(r.SoilHealth),
	}
	if r.FarmName != "" {
		tags["farm"] = r.FarmName
	}
	if r.Location != "" {
		tags["location"] = r.Location
	}
	return influxdb2.NewPoint(influxMeasurement, tags, fields, r.Timestamp)
}
