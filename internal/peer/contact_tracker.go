package peer

import (
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/dtn-window-stats/internal/common"
)

// DefaultContactTracker implements the ContactTracker interface. It keeps the
// start time of every open contact and folds elapsed time into the repository.
type DefaultContactTracker struct {
	repo   Repository
	active map[string]float64
	logger logrus.FieldLogger
}

// NewContactTracker creates a new contact tracker over repo
func NewContactTracker(repo Repository, logger logrus.FieldLogger) *DefaultContactTracker {
	return &DefaultContactTracker{
		repo:   repo,
		active: make(map[string]float64),
		logger: logger.WithField("component", "contact_tracker"),
	}
}

// OnLinkUp records now as the start of the contact with neighbor. A neighbor
// cannot have two open contacts, so a stale entry is overwritten.
func (t *DefaultContactTracker) OnLinkUp(neighbor string, now float64) {
	if started, open := t.active[neighbor]; open {
		t.logger.WithFields(logrus.Fields{
			"neighbor":   common.FormatShortNodeID(neighbor),
			"stale_from": started,
		}).Debug("Overwriting stale contact start")
	}

	t.active[neighbor] = now
}

// OnLinkDown closes the contact with neighbor and adds its remaining duration
func (t *DefaultContactTracker) OnLinkDown(neighbor string, now float64) {
	started, open := t.active[neighbor]
	if !open {
		t.logger.WithField("neighbor", common.FormatShortNodeID(neighbor)).Debug("Link down without matching link up")
		return
	}

	delete(t.active, neighbor)
	t.repo.AddContactTime(neighbor, now-started)

	t.logger.WithFields(logrus.Fields{
		"neighbor": common.FormatShortNodeID(neighbor),
		"duration": now - started,
	}).Debug("Closed contact")
}

// FoldOngoingContacts credits every open contact with its time up to boundary
// and moves its start to boundary.
func (t *DefaultContactTracker) FoldOngoingContacts(boundary float64) {
	for neighbor, started := range t.active {
		t.repo.AddContactTime(neighbor, boundary-started)
		t.active[neighbor] = boundary
	}
}

// ActiveCount returns the number of currently open contacts
func (t *DefaultContactTracker) ActiveCount() int {
	return len(t.active)
}

// Reset forgets every open contact
func (t *DefaultContactTracker) Reset() {
	t.active = make(map[string]float64)
}
