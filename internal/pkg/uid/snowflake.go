package uid

import (
	"errors"
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// ErrNodeOutOfRange is returned when the node number does not fit in 10 bits.
var ErrNodeOutOfRange = errors.New("uid: snowflake node must be between 0 and 1023")

// Snowflake generates 63-bit, time-ordered record keys.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake builds a generator for the given node. A negative node derives
// one from the hostname so replicas rarely collide without configuration.
func NewSnowflake(node int64) (*Snowflake, error) {
	if node < 0 {
		node = nodeFromHostname()
	}
	if node > 1023 {
		return nil, ErrNodeOutOfRange
	}

	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns the next id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func nodeFromHostname() int64 {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return 0
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(host))

	return int64(h.Sum32() % 1024)
}
