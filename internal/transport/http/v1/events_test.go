package v1

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/protocol"
)

func TestPrepareAndRecordEvent(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	c, rec := postJSON(e, "/v1/events",
		[]byte(`{"id":"answer_submitted","segmentation":{"item":"q1"},"time_ms":1700000000000,"duration_ms":1500}`))
	require.NoError(t, h.PrepareEvent(c))
	require.Equal(t, http.StatusOK, rec.Code)

	b, err := bag.Unmarshal(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, protocol.RecordEventAction, b.Action())

	c, rec = postJSON(e, "/v1/events/record", bagJSON(t, b))
	require.NoError(t, h.RecordEvent(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "answer_submitted", body["id"])
	assert.Equal(t, `{"item":"q1"}`, body["segmentation"])
	assert.Equal(t, float64(1500), body["duration_ms"])
}

func TestRecordEventInvalid(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	b := bag.New(protocol.RecordEventAction)
	b.Put(protocol.KeyEventID, bag.String("x"))
	b.Put(protocol.KeyEventSegmentation, bag.String("not json"))

	c, rec := postJSON(e, "/v1/events/record", bagJSON(t, b))
	require.NoError(t, h.RecordEvent(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "data_event", body["kind"])
	assert.Len(t, body["fields"], 3)
}

func TestRecordEventWrongBag(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	c, rec := postJSON(e, "/v1/events/record", bagJSON(t, protocol.NewDiscoveryQuery("com.example.MAIN")))
	require.NoError(t, h.RecordEvent(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
