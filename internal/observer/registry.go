package observer

import (
	"context"
)

// observe registers a long-lived observation of path. It is idempotent:
// an existing entry, confirmed or still pending, suppresses
// re-registration. Entries are never removed individually; the whole
// registry is cleared by session reset. Runs on the loop goroutine only.
func (o *Observer) observe(path string) {
	if _, ok := o.observed[path]; ok {
		return
	}
	o.observed[path] = false

	g := o.gen
	o.enqueue(Task{
		Name: "observe " + path,
		Run: func() error {
			err := o.tr.Observe(context.Background(), path, func(resp *Response) {
				o.post(func() {
					if g != o.gen {
						return
					}
					o.onUpdate(path, resp)
				})
			})
			if err != nil {
				return err
			}
			o.post(func() {
				// Confirm only within the session that registered it.
				if g != o.gen {
					return
				}
				if _, ok := o.observed[path]; ok {
					o.observed[path] = true
				}
			})
			return nil
		},
	})
}
