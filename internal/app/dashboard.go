package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"lmsc-client/internal/domain"
)

// StudentView is everything the student dashboard renders.
type StudentView struct {
	Identity domain.Identity
	Stats    domain.StudentStats
	Lessons  Page
}

// TeacherView is everything the teacher dashboard renders.
type TeacherView struct {
	Identity domain.Identity
	Stats    domain.TeacherStats
	Lessons  []domain.Lesson
}

// TeacherLessonView is the teacher's drill-down into one lesson.
type TeacherLessonView struct {
	Lesson      domain.LessonDetail
	Engagement  []domain.EngagementRecord
	Submissions []domain.TaskSubmission
}

// TeacherCatalog lists the lessons a teacher owns.
type TeacherCatalog interface {
	LessonsByTeacher(ctx context.Context, teacherID string) ([]domain.Lesson, error)
}

// DashboardOrchestrator composes session, catalog, stats and engagement into
// role-specific read-only views. It owns no business rules and no state; the
// collaborators do all the work.
type DashboardOrchestrator struct {
	session    *SessionStore
	search     SearchFunc
	teacher    TeacherCatalog
	lessons    LessonLoader
	stats      StatsProvider
	engagement EngagementProvider
	pageSize   int
}

func NewDashboardOrchestrator(session *SessionStore, search SearchFunc, teacher TeacherCatalog, lessons LessonLoader, stats StatsProvider, engagement EngagementProvider, pageSize int) *DashboardOrchestrator {
	if pageSize < 1 {
		pageSize = 10
	}
	return &DashboardOrchestrator{
		session:    session,
		search:     search,
		teacher:    teacher,
		lessons:    lessons,
		stats:      stats,
		engagement: engagement,
		pageSize:   pageSize,
	}
}

func (o *DashboardOrchestrator) require(role domain.Role) (domain.Identity, error) {
	identity, ok := o.session.Identity()
	if !ok {
		return domain.Identity{}, fmt.Errorf("%w: no active session", domain.ErrAuthentication)
	}
	if identity.Role != role {
		return domain.Identity{}, fmt.Errorf("%w: %s view requires the %s role", domain.ErrAuthentication, role, role)
	}
	return identity, nil
}

// Student assembles the student dashboard: first catalog page plus the
// student's stats, fetched in parallel.
func (o *DashboardOrchestrator) Student(ctx context.Context) (StudentView, error) {
	identity, err := o.require(domain.RoleStudent)
	if err != nil {
		return StudentView{}, err
	}

	view := StudentView{Identity: identity}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := o.search(ctx, Query{PageNum: 1, PageSize: o.pageSize})
		if err != nil {
			return err
		}
		view.Lessons = page
		return nil
	})
	g.Go(func() error {
		stats, err := o.stats.StudentStats(ctx, identity.ID)
		if err != nil {
			return err
		}
		view.Stats = stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return StudentView{}, err
	}
	return view, nil
}

// Teacher assembles the teacher dashboard: owned lessons plus engagement
// totals, fetched in parallel.
func (o *DashboardOrchestrator) Teacher(ctx context.Context) (TeacherView, error) {
	identity, err := o.require(domain.RoleTeacher)
	if err != nil {
		return TeacherView{}, err
	}

	view := TeacherView{Identity: identity}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lessons, err := o.teacher.LessonsByTeacher(ctx, identity.ID)
		if err != nil {
			return err
		}
		view.Lessons = lessons
		return nil
	})
	g.Go(func() error {
		stats, err := o.stats.TeacherStats(ctx, identity.ID)
		if err != nil {
			return err
		}
		view.Stats = stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return TeacherView{}, err
	}
	return view, nil
}

// TeacherLesson assembles the teacher's per-lesson drill-down.
func (o *DashboardOrchestrator) TeacherLesson(ctx context.Context, lessonID string) (TeacherLessonView, error) {
	if _, err := o.require(domain.RoleTeacher); err != nil {
		return TeacherLessonView{}, err
	}

	var view TeacherLessonView
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detail, err := o.lessons.LoadLesson(ctx, lessonID)
		if err != nil {
			return err
		}
		view.Lesson = detail
		return nil
	})
	g.Go(func() error {
		records, err := o.engagement.EngagementFor(ctx, lessonID)
		if err != nil {
			return err
		}
		view.Engagement = records
		return nil
	})
	g.Go(func() error {
		subs, err := o.engagement.TaskSubmissionsFor(ctx, lessonID)
		if err != nil {
			return err
		}
		view.Submissions = subs
		return nil
	})
	if err := g.Wait(); err != nil {
		return TeacherLessonView{}, err
	}
	return view, nil
}
