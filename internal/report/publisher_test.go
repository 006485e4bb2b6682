package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/2beens/workoutfines/internal/report"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	writer := &stubWriter{}
	p := report.NewPublisher(writer, "weekly-reports")

	weekly := &report.WeeklyReport{
		WeekStartDate: lastWeek,
		WeekEndDate:   time.Date(2024, 6, 9, 23, 59, 59, 0, time.UTC),
		Rows: []report.Row{
			{UserID: "u1", Username: "serj", WeeklyGoal: 5, ActualCount: 4, WeekPenalty: decimal.NewFromInt(2016), Status: report.StatusClose},
		},
		Participants:     1,
		TotalWeekPenalty: decimal.NewFromInt(2016),
		TotalAccumulated: decimal.NewFromInt(2016),
	}

	require.NoError(t, p.Publish(context.Background(), weekly))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "2024-06-03", string(msg.Key))

	var decoded report.WeeklyReport
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, 1, decoded.Participants)
	assert.Equal(t, "2016", decoded.TotalWeekPenalty.String())
	assert.Equal(t, report.StatusClose, decoded.Rows[0].Status)

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestPublisher_Publish_WriteError(t *testing.T) {
	writer := &stubWriter{err: errors.New("leader not available")}
	p := report.NewPublisher(writer, "weekly-reports")

	err := p.Publish(context.Background(), &report.WeeklyReport{WeekStartDate: lastWeek})
	require.Error(t, err)
	assert.ErrorIs(t, err, writer.err)
}
