// Package timeline schedules property animations and groups of work.
//
// # Scheduler
//
// A [Scheduler] owns one pulse loop. Every pulse it runs queued [Scheduler.Dispatch]
// calls, advances each active [Timeline], advances each playing [Scenario],
// drops finished items and flushes coalesced repaints. All timeline state,
// property setters and callbacks live on that one goroutine:
//
//	sched := timeline.New(timeline.Config{})
//	if err := sched.Start(ctx); err != nil {
//	    return err
//	}
//	defer sched.Stop()
//
// Tests usually skip Start and call [Scheduler.Pulse] with a fake clock.
//
// # Timelines
//
// A timeline moves a fraction from 0 to 1 over its duration, eases it, and
// writes every bound property:
//
//	tl := sched.NewTimeline(card)
//	tl.SetDuration(time.Second)
//	tl.AddInt("alpha", 0, 255, card.SetAlpha)
//	tl.Play()
//
// [Timeline.PlayLoop] repeats cycles, either restarting from 0 ([RepeatLoop])
// or bouncing back and forth ([RepeatReverse]).
//
// # Scenarios
//
// A scenario runs [Actor] values: timelines, [Runnable] functions,
// background jobs ([JobActor]) and nested scenarios. Sequences run actors
// one after another; rendezvous sequences run phases of parallel actors.
// Background jobs never touch timeline state; their completion is polled
// on the scheduler goroutine.
package timeline
