package harness

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync/atomic"
	"time"

	"hans/internal/backend"
	"hans/internal/fixtures"
)

// runIntegration seeds the descriptor's scenario and runs one scripted flow
// against the document store.
func (o *Orchestrator) runIntegration(ctx context.Context, cfg IntegrationTestConfig) (Details, error) {
	switch cfg.Category {
	case FlowFeatureIntegration, FlowDataFlow, FlowRealtimeSync, FlowNavigation:
	default:
		return nil, fmt.Errorf("%w: integration category must be one of feature_integration, data_flow, realtime_sync, navigation_flow; got %q",
			ErrInvalidDescriptor, cfg.Category)
	}

	sc, err := o.scenario(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	if err := fixtures.SeedBackend(sc, o.deps.Store); err != nil {
		return nil, err
	}

	details := &IntegrationDetails{
		Flow:            cfg.Category,
		Scenario:        sc.Name,
		DocumentsSeeded: len(sc.Documents),
	}
	switch cfg.Category {
	case FlowFeatureIntegration:
		err = o.featureFlow(ctx, cfg, sc, details)
	case FlowDataFlow:
		err = o.dataFlow(ctx, sc, details)
	case FlowRealtimeSync:
		err = o.realtimeFlow(ctx, cfg, sc, details)
	case FlowNavigation:
		err = o.navigationFlow(ctx, sc, details)
	}
	return details, err
}

// featureFlow renders a feature, creates a document next to the scenario
// target and checks it is listed.
func (o *Orchestrator) featureFlow(ctx context.Context, cfg IntegrationTestConfig, sc fixtures.Scenario, d *IntegrationDetails) error {
	if err := o.clock.Sleep(ctx, featureRenderCost); err != nil {
		return err
	}

	coll := o.deps.Store.Collection(path.Dir(sc.Target()))
	ref, err := coll.Add(ctx, map[string]interface{}{
		"feature":   cfg.Name,
		"createdBy": firstActor(sc),
		"createdAt": o.clock.Now(),
	})
	if err != nil {
		return err
	}
	d.Operations++

	snaps, err := coll.Get(ctx)
	if err != nil {
		return err
	}
	d.Operations++
	for _, s := range snaps {
		if s.ID() == ref.ID() {
			return nil
		}
	}
	return fmt.Errorf("created document %s missing from %s", ref.Path(), coll.Path())
}

// dataFlow replays the scenario script and checks the target ends up in the
// state the script implies. Operations marked denied are not executed.
func (o *Orchestrator) dataFlow(ctx context.Context, sc fixtures.Scenario, d *IntegrationDetails) error {
	start := o.clock.Now()
	expected := map[string]map[string]interface{}{}
	deleted := map[string]bool{}

	for _, op := range sc.Operations {
		if wait := op.Delay - o.clock.Now().Sub(start); wait > 0 {
			if err := o.clock.Sleep(ctx, wait); err != nil {
				return err
			}
		}
		if op.Denied {
			d.DeniedSkipped++
			continue
		}

		ref := o.deps.Store.Doc(op.Path)
		var err error
		switch op.Action {
		case fixtures.ActionRead:
			_, err = ref.Get(ctx)
		case fixtures.ActionSet:
			err = ref.Set(ctx, op.Data)
			expected[op.Path] = copyFields(nil, op.Data)
			delete(deleted, op.Path)
		case fixtures.ActionUpdate:
			err = ref.Update(ctx, op.Data)
			expected[op.Path] = copyFields(expected[op.Path], op.Data)
		case fixtures.ActionDelete:
			err = ref.Delete(ctx)
			deleted[op.Path] = true
			delete(expected, op.Path)
		case fixtures.ActionSubscribe:
			unsubscribe := ref.OnSnapshot(func(backend.DocumentSnapshot) {})
			defer unsubscribe()
		}
		if err != nil {
			return fmt.Errorf("%s %s by %s: %w", op.Action, op.Path, op.Actor, err)
		}
		d.Operations++
	}

	for p := range deleted {
		snap, err := o.deps.Store.Doc(p).Get(ctx)
		if err != nil {
			return err
		}
		if snap.Exists() {
			return fmt.Errorf("document %s still exists after delete", p)
		}
	}
	for p, fields := range expected {
		snap, err := o.deps.Store.Doc(p).Get(ctx)
		if err != nil {
			return err
		}
		data := snap.Data()
		for k, want := range fields {
			if got := data[k]; fmt.Sprint(got) != fmt.Sprint(want) {
				return fmt.Errorf("document %s field %s = %v, want %v", p, k, got, want)
			}
		}
	}
	return nil
}

// realtimeFlow subscribes to the scenario target, triggers a remote change
// and waits for the listener to see it.
func (o *Orchestrator) realtimeFlow(ctx context.Context, cfg IntegrationTestConfig, sc fixtures.Scenario, d *IntegrationDetails) error {
	target := sc.Target()
	token := fmt.Sprintf("%s@%d", cfg.Name, o.clock.Now().UnixNano())

	seen := make(chan struct{})
	var notified atomic.Int32
	unsubscribe := o.deps.Store.OnSnapshot(target, func(s backend.DocumentSnapshot) {
		notified.Add(1)
		if s.Exists() && s.Data()["syncToken"] == token {
			select {
			case <-seen:
			default:
				close(seen)
			}
		}
	})
	defer unsubscribe()
	d.Operations++

	snap, err := o.deps.Store.Doc(target).Get(ctx)
	if err != nil {
		return err
	}
	fields := snap.Data()
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["syncToken"] = token
	if err := o.deps.Store.TriggerRealtimeUpdate(target, fields); err != nil {
		return err
	}
	d.Operations++

	// Delivery is asynchronous, so this wait uses wall time.
	timer := time.NewTimer(o.syncWait)
	defer timer.Stop()
	select {
	case <-seen:
	case <-timer.C:
		return fmt.Errorf("no realtime notification for %s within %s", target, o.syncWait)
	case <-ctx.Done():
		return ctx.Err()
	}

	d.Notifications = int(notified.Load())
	return nil
}

// navigationFlow visits a fixed sequence of screens, loading the scenario
// target on the detail screen.
func (o *Orchestrator) navigationFlow(ctx context.Context, sc fixtures.Scenario, d *IntegrationDetails) error {
	for _, screen := range navigationScreens {
		if err := o.clock.Sleep(ctx, navigationStepCost); err != nil {
			return err
		}
		d.Screens = append(d.Screens, screen)
		if screen != "Detail" {
			continue
		}
		snap, err := o.deps.Store.Doc(sc.Target()).Get(ctx)
		if err != nil {
			return err
		}
		d.Operations++
		if !snap.Exists() {
			return errors.New("detail screen target is missing")
		}
	}
	return nil
}

func firstActor(sc fixtures.Scenario) string {
	if len(sc.Actors) == 0 {
		return ""
	}
	return sc.Actors[0].ID
}

func copyFields(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
