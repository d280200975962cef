// Package testing provides helpers for deterministic scheduler tests.
//
// # Quick Start
//
// Drive a scheduler with a fake clock instead of starting its loop:
//
//	func TestFade(t *testing.T) {
//	    clk := granitetest.NewFakeClock()
//	    sched := timeline.New(timeline.Config{Clock: clk})
//
//	    tl := sched.NewTimeline(card)
//	    tl.AddInt("alpha", 0, 255, card.SetAlpha)
//	    tl.Play()
//
//	    granitetest.PumpFor(sched, clk, 250*time.Millisecond)
//	    // assert on card...
//
//	    if err := granitetest.PumpAndSettle(sched, clk, time.Second); err != nil {
//	        t.Fatal(err)
//	    }
//	}
//
// The first pulse after Play moves a timeline from Ready to playing, and
// every later pulse advances it by the fake time that passed.
package testing
