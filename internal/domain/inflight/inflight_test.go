package inflight_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/intervue/internal/domain/inflight"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGuard(t *testing.T) {
	Convey("Given a new Guard", t, func() {
		ctx := context.Background()
		g := inflight.NewGuard(inflight.WithCapacity(8))
		So(g.Size(), ShouldEqual, 0)

		Convey("When a key is acquired", func() {
			ok := g.Acquire(ctx, "bid:u1:i1")

			Convey("Then it is running", func() {
				So(ok, ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And a second acquire of the same key fails", func() {
				So(g.Acquire(ctx, "bid:u1:i1"), ShouldBeFalse)
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And other keys are independent", func() {
				So(g.Acquire(ctx, "bid:u2:i1"), ShouldBeTrue)
				So(g.Size(), ShouldEqual, 2)
			})

			Convey("And after release it can be acquired again", func() {
				g.Release(ctx, "bid:u1:i1")
				So(g.Size(), ShouldEqual, 0)
				So(g.Acquire(ctx, "bid:u1:i1"), ShouldBeTrue)
			})
		})

		Convey("When an unknown key is released", func() {
			g.Release(ctx, "nope")
			So(g.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given concurrent acquirers of one key", t, func() {
		ctx := context.Background()
		g := inflight.NewGuard()
		var wins atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if g.Acquire(ctx, "apply:u1:a1") {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one wins", func() {
			So(wins.Load(), ShouldEqual, 1)
		})
	})

	Convey("Given key parts", t, func() {
		So(inflight.Key("bid", "u1", "i1"), ShouldEqual, "bid:u1:i1")
		So(inflight.Key("toggle", fmt.Sprint("u", 2)), ShouldEqual, "toggle:u2")
	})
}
