// Package observer implements the orchestration engine of the bridge:
// it binds one gateway's CoAP resource tree to the message bus.
//
// # Responsibilities
//
// A single Observer instance owns four interacting pieces of state:
//
//   - Task queue: every outbound device-protocol call is serialized
//     through one retrying FIFO, so no two requests are ever in flight
//     at once. This is deliberate backpressure protecting a constrained
//     device from request floods.
//   - Ping watchdog: a self-perpetuating liveness cycle; three
//     consecutive missed probes force a session reset.
//   - Discovery loop: a periodic fetch-and-diff of the root link-format
//     document; newly advertised observable resources are registered.
//   - Observation registry: the set of currently observed resource
//     paths. Notifications for index resources (15001, 15004, 15005)
//     carry child identifier lists and trigger recursive registration.
//
// # Concurrency Model
//
// All mutable state is owned by one event-loop goroutine. Timers, task
// completions and observation notifications post closures onto the
// loop, so no locking is needed and timer/callback races collapse into
// a serialized order. Closures capture the session generation and
// become no-ops after a reset has intervened.
//
// # Session Reset
//
// Three consecutive ping or discovery failures (or an external Reset
// call) tear down the session: transport session state, pending queue
// entries, drain and discovery timers, the discovery snapshot and the
// observation registry. In-flight transport operations are not
// cancelled; a brief window after reset may still see their effects.
// The ping watchdog is started once and survives resets.
//
// # Usage Example
//
//	obs, err := observer.New(observer.Config{
//	    BaseURL:     "coaps://192.168.1.63:5684",
//	    TopicPrefix: "tradfri-raw",
//	}, transport, parser, publisher)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	obs.Start()
//	defer obs.Close()
package observer
