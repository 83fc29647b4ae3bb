package kafkaconnect

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// ProbeCluster opens and immediately discards a connection to a Kafka
// cluster's bootstrap address to confirm basic reachability, used by
// foundry doctor. A successful dial does not guarantee broker-level
// authorization, only network reachability.
func ProbeCluster(ctx context.Context, bootstrapServers string) error {
	dialer := &kafka.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", bootstrapServers)
	if err != nil {
		return fmt.Errorf("dial kafka cluster %q: %w", bootstrapServers, err)
	}
	defer conn.Close()
	return nil
}
