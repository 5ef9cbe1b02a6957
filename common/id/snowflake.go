// Package id issues the snowflake ids that tie one change request together
// across relay logs, traces and the X-Request-Id header.
package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the generator for this relay instance. Only the first call has
// any effect; NODE_ID must be unique per running relay.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
		if err != nil {
			err = fmt.Errorf("snowflake node %d: %w", nodeID, err)
		}
	})
	return err
}

func New() int64 {
	return node.Generate().Int64()
}

// Parse accepts a request id minted by any relay node, as echoed back by a
// client that wants its retries and reports tied to the original request.
func Parse(s string) (int64, bool) {
	sid, err := snowflake.ParseString(s)
	if err != nil || sid.Int64() <= 0 {
		return 0, false
	}
	return sid.Int64(), true
}
