package worker

import "sync"

// Task 一項背景工作
type Task func()

// Pool 背景工作池，用於非同步的小任務（例如 token 快取失效）
type Pool interface {
	Submit(Task)
	Stop()
}

const queueSize = 16

type pool struct {
	queue chan Task
	wg    sync.WaitGroup
}

// NewPool 啟動 n 個 worker，n <= 0 視為 1
func NewPool(n int) Pool {
	if n <= 0 {
		n = 1
	}
	p := &pool{queue: make(chan Task, queueSize)}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.loop()
	}
	return p
}

func (p *pool) loop() {
	defer p.wg.Done()
	for task := range p.queue {
		if task != nil {
			task()
		}
	}
}

// Submit 排入一項工作，佇列滿時阻塞
func (p *pool) Submit(t Task) {
	p.queue <- t
}

// Stop 關閉佇列並等待所有 worker 完成
func (p *pool) Stop() {
	close(p.queue)
	p.wg.Wait()
}
