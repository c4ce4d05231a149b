package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/leaguecast/internal/adapters/repository"
	"github.com/okian/leaguecast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func job(id string, status model.JobStatus) model.JobResult {
	return model.JobResult{Job: model.Job{ID: id}, Status: status}
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()

		Convey("When a job is stored and updated", func() {
			So(s.PutJob(ctx, job("j1", model.JobQueued)), ShouldBeNil)
			So(s.PutJob(ctx, job("j1", model.JobCompleted)), ShouldBeNil)

			Convey("Then the latest state is returned", func() {
				res, err := s.Job(ctx, "j1")
				So(err, ShouldBeNil)
				So(res.Status, ShouldEqual, model.JobCompleted)
				So(s.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When a job has no id", func() {
			So(s.PutJob(ctx, job("", model.JobQueued)), ShouldEqual, repository.ErrInvalidJobID)
		})

		Convey("When looking up unknown entries", func() {
			_, err := s.Job(ctx, "nope")
			So(err, ShouldEqual, repository.ErrNotFound)
			_, err = s.Metrics(ctx, "nope")
			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("When league metrics are stored twice", func() {
			first := model.NewLeagueMetrics("L")
			first.Simulations = 10
			second := model.NewLeagueMetrics("L")
			second.Simulations = 20
			So(s.PutMetrics(ctx, first), ShouldBeNil)
			So(s.PutMetrics(ctx, second), ShouldBeNil)

			Convey("Then the latest forecast wins", func() {
				m, err := s.Metrics(ctx, "L")
				So(err, ShouldBeNil)
				So(m.Simulations, ShouldEqual, 20)
			})
		})
	})

	Convey("Given a bounded memory store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore(repository.WithMaxJobs(2))

		Convey("When more jobs than the bound are stored", func() {
			for i := 0; i < 3; i++ {
				So(s.PutJob(ctx, job(fmt.Sprintf("j%d", i), model.JobQueued)), ShouldBeNil)
			}

			Convey("Then the oldest job is evicted", func() {
				So(s.Count(ctx), ShouldEqual, 2)
				_, err := s.Job(ctx, "j0")
				So(err, ShouldEqual, repository.ErrNotFound)
				_, err = s.Job(ctx, "j2")
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given concurrent writers", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore(repository.WithMaxJobs(0))
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = s.PutJob(ctx, job(fmt.Sprintf("job-%d", i), model.JobRunning))
				_, _ = s.Job(ctx, fmt.Sprintf("job-%d", i))
			}(i)
		}
		wg.Wait()

		So(s.Count(ctx), ShouldEqual, 50)
	})
}
