// Package accel provides the offload device behind the engine's asynchronous
// operation mode.
//
// A Queue accepts Work items and runs them on background goroutines, at most
// Workers at a time. Submit returns an Event immediately; the caller polls it
// or waits on it. A caller that stops waiting abandons the Event, but the
// work itself keeps running until it returns: cancellation is fire and
// forget. Closing the queue stops work that has not started yet.
//
// The software queue stands in for a hardware accelerator. Anything that
// satisfies the same submit/poll/wait contract can replace it.
package accel
