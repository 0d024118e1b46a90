package service

import (
	"context"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Dashboard composes the reads each role's dashboard issues on load.
type Dashboard struct {
	tasks *Tasks
	users *Users
}

func NewDashboard(tasks *Tasks, users *Users) *Dashboard {
	return &Dashboard{tasks: tasks, users: users}
}

type DashboardView struct {
	Role      user.Role
	Tasks     TaskList
	Users     []user.User
	Analytics *task.Analytics
	Stats     *task.Stats
}

// Load fetches tasks plus users and analytics for admins, or tasks plus
// stats for users. The reads run concurrently; the first error wins.
func (s *Dashboard) Load(ctx context.Context, p user.Principal, q ListTasksQuery) (DashboardView, error) {
	ctx, span := observability.StartSpan(ctx, "dashboard.load", attribute.String("taskhub.role", string(p.Role)))
	view, err := s.load(ctx, p, q)
	observability.EndSpan(span, err)
	return view, err
}

func (s *Dashboard) load(ctx context.Context, p user.Principal, q ListTasksQuery) (DashboardView, error) {
	view := DashboardView{Role: p.Role}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.tasks.List(gctx, p, q)
		if err != nil {
			return err
		}
		view.Tasks = list
		return nil
	})

	if p.IsAdmin() {
		g.Go(func() error {
			// the admin dashboard shows every user in one select box
			list, err := s.users.List(gctx, p, ListUsersQuery{Limit: MaxLimit})
			if err != nil {
				return err
			}
			view.Users = list.Users
			return nil
		})

		g.Go(func() error {
			a, err := s.tasks.Analytics(gctx, p)
			if err != nil {
				return err
			}
			view.Analytics = &a
			return nil
		})
	} else {
		g.Go(func() error {
			st, err := s.tasks.Stats(gctx, p)
			if err != nil {
				return err
			}
			view.Stats = &st
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return DashboardView{}, err
	}

	if view.Users == nil && p.IsAdmin() {
		view.Users = []user.User{}
	}
	return view, nil
}
