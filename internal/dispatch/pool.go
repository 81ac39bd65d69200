package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Pool — ограниченный пул фоновых обработчиков. Его назначение — держать
// число одновременных обращений к бэкенду небольшим и фиксированным;
// всплеск трафика встаёт в очередь, а не расползается по горутинам.
type Pool struct {
	jobs	chan func(context.Context)
	done	chan struct{}
	wg	sync.WaitGroup
}

func NewPool(workers, queueSize int) (*Pool, error) {
	if workers <= 0 || queueSize <= 0 {
		return nil, errors.New("размер пула и очереди должны быть положительными")
	}

	p := &Pool{
		jobs:	make(chan func(context.Context), queueSize),
		done:	make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}

	logrus.Infof("Пул обработчиков запущен: %d воркеров, очередь %d", workers, queueSize)
	return p, nil
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			job(context.Background())
		case <-p.done:
			// дорабатываем то, что уже встало в очередь
			for {
				select {
				case job := <-p.jobs:
					job(context.Background())
				default:
					return
				}
			}
		}
	}
}

// Submit блокируется, когда очередь заполнена. После начала остановки
// задача отбрасывается с предупреждением: канал задач никогда не
// закрывается, поэтому заблокированный Submit не может паниковать.
func (p *Pool) Submit(job func(context.Context)) {
	select {
	case p.jobs <- job:
	case <-p.done:
		logrus.Warn("Пул останавливается, задача отклонена")
	}
}

// Shutdown прекращает приём задач, дорабатывает очередь и ждёт воркеров.
func (p *Pool) Shutdown(ctx context.Context) error {
	close(p.done)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("Пул обработчиков остановлен")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
