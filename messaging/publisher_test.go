package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	subjects []string
	payloads [][]byte
	err      error
	closed   bool
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func (c *recordingConn) Close() { c.closed = true }

func TestConnPublisherPublish(t *testing.T) {
	conn := &recordingConn{}
	p := NewConnPublisher(conn, "vb")

	event := LiveEvent{
		Kind:       PointScored,
		MatchID:    "m-1",
		SetNumber:  2,
		HomeScore:  10,
		AwayScore:  8,
		OccurredAt: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
		Payload:    map[string]interface{}{"point_type": "SPK"},
	}
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "vb.matches.m-1.point.scored", conn.subjects[0])

	var decoded LiveEvent
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	assert.Equal(t, event.Kind, decoded.Kind)
	assert.Equal(t, 10, decoded.HomeScore)
	assert.Equal(t, "SPK", decoded.Payload["point_type"])

	p.Close()
	assert.True(t, conn.closed)
}

func TestConnPublisherError(t *testing.T) {
	conn := &recordingConn{err: errors.New("connection closed")}
	p := NewConnPublisher(conn, "")

	err := p.Publish(context.Background(), LiveEvent{Kind: SetStarted, MatchID: "m-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volleyball.matches.m-2.set.started")
}

func TestNewPublisherWithoutURL(t *testing.T) {
	p, err := NewPublisher(Config{})
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), LiveEvent{Kind: MatchStarted}))
}
