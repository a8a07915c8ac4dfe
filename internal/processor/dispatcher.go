// Package processor 实现档案分析流水线:
// 分块解析、区块抽取、经验核对、技能合并、岗位推荐和结果汇总。
package processor

import (
	"context"
	"io"
	"log"
	"sync"

	"profile-agent-go/internal/types"
)

// DefaultConcurrencyCeiling 默认并发上限
const DefaultConcurrencyCeiling = 5

// Task 一次可并发执行的工作单元
type Task[T any] func(ctx context.Context) (T, error)

// Dispatcher 有界并发调度器。
// 任务数不超过上限时全部并发；超过时按上限分批，批内并发、批间顺序。
// 结果严格按任务提交顺序返回。
//
// 单个任务失败不拖垮整批: 失败槽位用degrade的返回值填充。
// 唯一的例外是服务不可用——继续跑只会凑齐一批超时，整个调度立即中止。
type Dispatcher struct {
	ceiling int
	logger  *log.Logger
}

// DispatcherOption 调度器配置选项
type DispatcherOption func(*Dispatcher)

// WithConcurrencyCeiling 设置并发上限
func WithConcurrencyCeiling(ceiling int) DispatcherOption {
	return func(d *Dispatcher) {
		if ceiling > 0 {
			d.ceiling = ceiling
		}
	}
}

// WithDispatcherLogger 设置调试日志器
func WithDispatcherLogger(logger *log.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher 创建调度器
func NewDispatcher(options ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		ceiling: DefaultConcurrencyCeiling,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Dispatch 执行任务集并按提交顺序返回结果。
// degrade把失败槽位的错误换成该槽位的降级值。
func Dispatch[T any](ctx context.Context, d *Dispatcher, tasks []Task[T], degrade func(err error) T) ([]T, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	results := make([]T, len(tasks))
	errs := make([]error, len(tasks))

	batchSize := d.ceiling
	if len(tasks) <= d.ceiling {
		batchSize = len(tasks)
	}
	d.logger.Printf("开始调度: %d个任务, 批大小%d", len(tasks), batchSize)

	for start := 0; start < len(tasks); start += batchSize {
		end := start + batchSize
		if end > len(tasks) {
			end = len(tasks)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()
				results[slot], errs[slot] = tasks[slot](ctx)
			}(i)
		}
		wg.Wait()

		// 批结束即检查: 服务不可用时后续批次没有意义
		for i := start; i < end; i++ {
			if errs[i] != nil && types.IsOracleUnavailable(errs[i]) {
				d.logger.Printf("任务%d遇到服务不可用，中止整个调度", i)
				return nil, errs[i]
			}
		}
	}

	for i, err := range errs {
		if err != nil {
			d.logger.Printf("任务%d失败，使用降级值: %v", i, err)
			results[i] = degrade(err)
		}
	}
	return results, nil
}
