package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

var ErrTaskPanic = errors.New("task panicked")

// Result 单次执行结果, 任务的错误和 panic 都收敛到这里
type Result struct {
	Task     string
	Start    time.Time
	Duration time.Duration
	Err      error
}

func (r Result) Panicked() bool {
	return errors.Is(r.Err, ErrTaskPanic)
}

// RunOnce 执行一次任务, panic 会被恢复并转换为 ErrTaskPanic
func RunOnce(ctx context.Context, task Task) (res Result) {
	res = Result{Task: task.Name(), Start: time.Now()}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("task panic recovered", "task", res.Task, "panic", r, "stack", string(debug.Stack()))
			res.Err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
		res.Duration = time.Since(res.Start)
	}()
	res.Err = task.Run(ctx)
	return res
}

// Loop 循环执行任务直到 stop 关闭或 ctx 结束.
// interval 从上一轮结束开始计时, 等待期间可以被 stop 打断; 正在执行的一轮不会被抢占.
func Loop(ctx context.Context, task Task, interval time.Duration, stop <-chan struct{}, observe func(Result)) {
	timer := time.NewTimer(interval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		res := RunOnce(ctx, task)
		if observe != nil {
			observe(res)
		}

		timer.Reset(interval)
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}
