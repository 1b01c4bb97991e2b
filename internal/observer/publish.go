package observer

import (
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/tradfri-bridge/internal/logging"
)

// Index resources are root-level paths whose payload is a list of child
// resource identifiers rather than a leaf value. On the Trådfri gateway
// these are the device, group and mood collections.
const (
	IndexDevices = "15001"
	IndexGroups  = "15004"
	IndexMoods   = "15005"
)

func isIndexPath(path string) bool {
	return path == IndexDevices || path == IndexGroups || path == IndexMoods
}

// childListPath reports whether a notification for path carries a list
// of child identifiers to recurse into: the three index resources
// themselves, plus one level of nesting directly beneath them (mood
// lists live under their group, for example).
func childListPath(path string) bool {
	if isIndexPath(path) {
		return true
	}
	parts := strings.Split(path, "/")
	return len(parts) == 2 && isIndexPath(parts[0])
}

// onUpdate handles one observation notification (or the raw discovery
// document, keyed by the root path): it republishes the payload to the
// bus, retained, and for index resources registers observations of every
// child listed in the payload. Malformed child lists are logged and
// dropped; the path stays considered up to date. Runs on the loop
// goroutine only.
func (o *Observer) onUpdate(path string, resp *Response) {
	topic := o.topicFor(path)
	if err := o.bus.Publish(topic, resp.Payload, true); err != nil {
		logging.Warn("Publish failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
	} else {
		logging.LogPublish(topic, len(resp.Payload))
	}

	if !childListPath(path) {
		return
	}

	var children []int64
	if err := json.Unmarshal(resp.Payload, &children); err != nil {
		logging.Warn("Malformed child identifier list",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}
	for _, id := range children {
		o.observe(path + "/" + strconv.FormatInt(id, 10))
	}
}
