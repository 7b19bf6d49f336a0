package notification

import (
	"context"
	"fmt"
	"strings"

	"f1weekendsim/pkg/championship"
	"f1weekendsim/pkg/logger"
	"f1weekendsim/pkg/pubsub"
	"f1weekendsim/pkg/registry"

	"github.com/charmbracelet/log"
	"github.com/nikoksr/notify"
)

// Manager announces every completed race through the configured services.
type Manager struct {
	ctx      context.Context
	reg      *registry.Registry
	notifier *notify.Notify
	ps       *pubsub.PubSub[championship.RaceCompleted]
	results  <-chan championship.RaceCompleted
	logger   *log.Logger
}

// NewManager subscribes to race results right away, so nothing published
// before Start is lost.
func NewManager(ctx context.Context, reg *registry.Registry, ps *pubsub.PubSub[championship.RaceCompleted], l *log.Logger, services ...notify.Notifier) *Manager {
	return &Manager{
		ctx:      ctx,
		reg:      reg,
		notifier: notify.NewWithServices(services...),
		ps:       ps,
		results:  ps.Subscribe(championship.TopicRaceCompleted),
		logger:   logger.OrDiscard(l),
	}
}

// Start handles results until exitChan fires or the pubsub is closed. On
// exit it unsubscribes, so later races are no longer queued for it.
func (m *Manager) Start(exitChan <-chan bool) {
	for {
		select {
		case <-exitChan:
			m.ps.Unsubscribe(championship.TopicRaceCompleted, m.results)
			return
		case ev, ok := <-m.results:
			if !ok {
				return
			}
			m.handleNotification(ev)
		}
	}
}

func (m *Manager) handleNotification(ev championship.RaceCompleted) {
	subject, message := Announcement(m.reg, ev)
	m.logger.Debug("sending race announcement", "round", ev.Round, "track", ev.TrackID)
	if err := m.notifier.Send(m.ctx, subject, message); err != nil {
		m.logger.Warn("error sending announcement", "round", ev.Round, "err", err)
	}
}

// Announcement formats the podium and the championship leader of a race.
func Announcement(reg *registry.Registry, ev championship.RaceCompleted) (string, string) {
	track := ev.TrackName
	if track == "" {
		track = ev.TrackID
	}
	subject := fmt.Sprintf("Round %d: %s", ev.Round, track)

	lines := []string{}
	if len(ev.Podium) == 0 {
		lines = append(lines, "No classified finishers")
	}
	for _, e := range ev.Podium {
		name, team := e.DriverID, e.TeamID
		if d, err := reg.Driver(e.DriverID); err == nil {
			name = d.Name
		}
		if t, err := reg.Team(e.TeamID); err == nil {
			team = t.Name
		}
		lines = append(lines, fmt.Sprintf("P%d %s (%s)", e.Position, name, team))
	}
	if leader, ok := ev.Leader(); ok {
		lines = append(lines, fmt.Sprintf("Championship leader: %s, %d pts", leader.Name, leader.Points))
	}
	return subject, strings.Join(lines, "\n")
}
