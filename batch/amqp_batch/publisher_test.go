package amqp_batch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/emptyOVO/freqset-go/batch/itemsets"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "frequent1.FR", RoutingKey(itemsets.Record{Phase: "frequent1", GroupKey: "FR"}))
	assert.Equal(t, "frequent2.United_Kingdom", RoutingKey(itemsets.Record{Phase: "frequent2", GroupKey: "United Kingdom"}))
	assert.Equal(t, "frequent2.U_S_A_", RoutingKey(itemsets.Record{Phase: "frequent2", GroupKey: "U.S.A."}))
}

func TestMessageJSON(t *testing.T) {
	body, err := json.Marshal(newMessage(itemsets.Record{
		Phase: "frequent2", GroupKey: "FR", Itemset: "itemA,itemB", Support: 9,
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"frequent2","group_key":"FR","itemset":["itemA","itemB"],"support":9}`, string(body))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.WithDefaults()
	assert.Equal(t, DefaultURL, cfg.URL)
	assert.Equal(t, "freqset.itemsets", cfg.Exchange)
	assert.Equal(t, amqp.ExchangeTopic, cfg.ExchangeType)
}

func TestPublishBadURL(t *testing.T) {
	err := Publish(context.Background(), Config{URL: "not-a-url"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to RabbitMQ")
}
