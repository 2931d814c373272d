package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/SlpAus/oogiri-battle-backend/pkg/lifecycle"
	"github.com/google/uuid"
)

// Task 是一个延迟执行的后台任务
type Task struct {
	ID   string
	Name string
	Run  func(ctx context.Context)
}

// Queue 是一个单一消费者的延迟任务队列。
// Submit立即返回，任务由后台worker按提交顺序执行；
// HTTP响应先于任务的效果发出，调用方需要轮询来观察结果。
type Queue struct {
	tasks chan Task

	// pending 跟踪所有已接收但尚未执行完的任务，供Drain等待
	pending sync.WaitGroup

	shutdownMutex sync.Mutex
	isShutdown    bool
}

// NewQueue 创建一个指定缓冲容量的任务队列
func NewQueue(size int) *Queue {
	return &Queue{
		tasks: make(chan Task, size),
	}
}

// Submit 提交一个新任务并立即返回。
// 队列已满或已停机时任务会被放弃，只打印警告，不阻塞调用方。
func (q *Queue) Submit(name string, run func(ctx context.Context)) {
	task := Task{
		ID:   uuid.NewString(),
		Name: name,
		Run:  run,
	}

	q.shutdownMutex.Lock()
	if q.isShutdown {
		q.shutdownMutex.Unlock()
		fmt.Printf("警告: 任务队列已停机，放弃任务 [%s] (ID: %s)\n", task.Name, task.ID)
		return
	}

	q.pending.Add(1)
	select {
	case q.tasks <- task:
		q.shutdownMutex.Unlock()
	default:
		q.pending.Done()
		q.shutdownMutex.Unlock()
		fmt.Printf("警告: 任务队列已满，放弃任务 [%s] (ID: %s)\n", task.Name, task.ID)
	}
}

// Start 启动队列的主处理循环。
// 收到停机信号后，它会先排空已提交的任务再退出。
func (q *Queue) Start(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("延迟任务队列 (Task Queue) 已启动。")

	for {
		select {
		case <-handle.Done():
			q.drain()
			fmt.Println("Task Queue: 剩余任务处理完毕，主循环退出。")
			return
		case task := <-q.tasks:
			q.runTask(task)
		}
	}
}

// drain 在停机时关闭队列并处理完channel中剩余的任务
func (q *Queue) drain() {
	q.shutdownMutex.Lock()
	q.isShutdown = true
	close(q.tasks)
	q.shutdownMutex.Unlock()

	for task := range q.tasks {
		q.runTask(task)
	}
}

// runTask 执行单个任务，并保证panic不会击穿worker
func (q *Queue) runTask(task Task) {
	defer q.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("错误: 任务 [%s] (ID: %s) 发生panic: %v\n", task.Name, task.ID, r)
		}
	}()

	task.Run(context.Background())
}

// Drain 阻塞直到所有已提交的任务执行完毕。
// 测试通过它来等待延迟效果落地。
func (q *Queue) Drain() {
	q.pending.Wait()
}
