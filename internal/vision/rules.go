package vision

import "time"

// The two rule scans below run over the post-purge track table, loitering
// first. The alert latch is shared per track, not per rule: a track that
// fires loitering is skipped by the abandonment scan in the same pass, so
// each track alerts at most once in its lifetime.

// checkLoitering fires for person tracks that have existed beyond the
// loiter duration while remaining within the loiter radius of their
// anchor. The dwell clock is anchored to track creation regardless of
// intermediate movement: a person who wanders off and returns within the
// staleness window keeps accumulating dwell against the original anchor,
// and only the displacement at evaluation time gates the alert.
func (e *Engine) checkLoitering(now time.Time) []Alert {
	var alerts []Alert
	for _, id := range e.order {
		tr := e.tracks[id]
		if tr.State == TrackAlerted || !e.cfg.PersonLabels[tr.Label] {
			continue
		}
		dwell := tr.Dwell(now)
		if dwell < e.cfg.LoiterTime {
			continue
		}
		if tr.Displacement() > e.cfg.LoiterRadius {
			// Moved away rather than loitered. No state reset: the
			// anchor and first-seen time stay as they are.
			continue
		}
		tr.State = TrackAlerted
		alerts = append(alerts, Alert{
			Type:         AlertLoitering,
			TrackID:      tr.ID,
			SinceSeconds: roundTenth(dwell),
			Box:          tr.Box,
			Confidence:   tr.Confidence,
		})
	}
	return alerts
}

// checkAbandoned fires for monitored object tracks with no person nearby
// beyond the abandonment duration.
//
// A person counts as present only if observed within PersonFreshness of
// now; stale person tracks still in the table do not attend objects.
func (e *Engine) checkAbandoned(now time.Time) []Alert {
	var people []Point
	for _, id := range e.order {
		tr := e.tracks[id]
		if e.cfg.PersonLabels[tr.Label] && now.Sub(tr.LastSeen) < e.cfg.PersonFreshness {
			people = append(people, tr.Box.Center())
		}
	}

	var alerts []Alert
	for _, id := range e.order {
		tr := e.tracks[id]
		if tr.State == TrackAlerted || !e.cfg.ObjectLabels[tr.Label] {
			continue
		}

		c := tr.Box.Center()
		attended := false
		for _, p := range people {
			if Distance(c, p) <= e.cfg.NearPersonDist {
				attended = true
				break
			}
		}
		if attended {
			// The timer restart below applies only while the anchor is
			// unset, which cannot hold after creation: in practice the
			// abandonment clock runs from track creation and is never
			// restarted by later nearby-person presence.
			if !tr.Anchor.Valid {
				tr.FirstSeen = now
			}
			continue
		}

		dwell := tr.Dwell(now)
		if dwell < e.cfg.AbandonTime {
			continue
		}
		tr.State = TrackAlerted
		alerts = append(alerts, Alert{
			Type:         AlertAbandoned,
			TrackID:      tr.ID,
			SinceSeconds: roundTenth(dwell),
			Box:          tr.Box,
			Confidence:   tr.Confidence,
			Label:        tr.Label,
		})
	}
	return alerts
}
