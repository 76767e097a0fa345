package task

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/kun/log"
)

// New create an async task coordinator
func New(option Option) *Coordinator {
	if option.Name == "" {
		option.Name = "blocks"
	}

	if option.Quota <= 0 {
		option.Quota = 20
	}

	if option.WorkerNums <= 0 {
		option.WorkerNums = 1
	}

	if option.JobQueueLength <= 0 {
		option.JobQueueLength = 1024
	}

	if option.Executor == nil {
		option.Executor = Inline{}
	}

	if option.Online == nil {
		option.Online = func(string) bool { return true }
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		name:     option.Name,
		quota:    option.Quota,
		handles:  map[string]*Handle{},
		owners:   map[string]map[string]*Handle{},
		jobque:   make(chan *Handle, option.JobQueueLength),
		executor: option.Executor,
		online:   option.Online,
		workers:  option.WorkerNums,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start the workers
func (c *Coordinator) Start() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.work()
	}
	log.Trace("[TASK] %s started %d workers", c.name, c.workers)
}

// Schedule a request, the owner's live handles never exceed the quota
func (c *Coordinator) Schedule(req Request) (*Handle, error) {
	if req.Fire == nil {
		return nil, errs.New(errs.Parameter, "the task has nothing to run")
	}

	if req.Kind == Loop && req.Interval <= 0 {
		return nil, errs.New(errs.Parameter, "loop interval must be positive")
	}

	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil, fmt.Errorf("[TASK] %s is shut down", c.name)
	}

	owned := c.owners[req.Owner]
	if len(owned) >= c.quota {
		c.mutex.Unlock()
		return nil, errs.New(errs.Quota, "async task quota of %d exceeded for %s", c.quota, ownerName(req.Owner))
	}

	h := &Handle{
		ID:       uuid.NewString(),
		Owner:    req.Owner,
		ScriptID: req.ScriptID,
		Kind:     req.Kind,
		Created:  time.Now(),
		request:  req,
		status:   WAITING,
	}

	if owned == nil {
		owned = map[string]*Handle{}
		c.owners[req.Owner] = owned
	}
	owned[h.ID] = h
	c.handles[h.ID] = h
	c.mutex.Unlock()

	log.Trace("[TASK] %s #%s %s scheduled for %s", c.name, h.ID, h.Kind, ownerName(h.Owner))
	c.arm(h, req.Delay)
	return h, nil
}

// Cancel a handle, cancelling an unknown or cancelled handle is a no-op
func (c *Coordinator) Cancel(id string) bool {
	h := c.remove(id, CANCELLED)
	if h == nil {
		return false
	}
	log.Trace("[TASK] %s #%s cancelled", c.name, id)
	return true
}

// CancelAll cancel every handle of an owner
func (c *Coordinator) CancelAll(owner string) int {
	return c.cancelWhere(func(h *Handle) bool { return h.Owner == owner })
}

// CancelScript cancel every handle scheduled by a script
func (c *Coordinator) CancelScript(scriptID string) int {
	return c.cancelWhere(func(h *Handle) bool { return h.ScriptID == scriptID })
}

// Count the live handles of an owner
func (c *Coordinator) Count(owner string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.owners[owner])
}

// Total the live handles
func (c *Coordinator) Total() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.handles)
}

// List the live handles of an owner, oldest first
func (c *Coordinator) List(owner string) []Info {
	c.mutex.Lock()
	handles := make([]*Handle, 0, len(c.owners[owner]))
	for _, h := range c.owners[owner] {
		handles = append(handles, h)
	}
	c.mutex.Unlock()

	sort.Slice(handles, func(i, j int) bool { return handles[i].Created.Before(handles[j].Created) })
	infos := make([]Info, 0, len(handles))
	for _, h := range handles {
		infos = append(infos, h.Info())
	}
	return infos
}

// Get a live handle
func (c *Coordinator) Get(id string) (*Handle, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	h, has := c.handles[id]
	return h, has
}

// Shutdown cancel every handle and stop the workers, nothing fires afterwards
func (c *Coordinator) Shutdown() {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return
	}
	c.closed = true
	c.mutex.Unlock()

	n := c.cancelWhere(func(*Handle) bool { return true })
	c.cancel()
	c.wg.Wait()
	log.Info("[TASK] %s shut down, %d tasks cancelled", c.name, n)
}

// Info a snapshot of the handle
func (h *Handle) Info() Info {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return Info{
		ID:        h.ID,
		Owner:     h.Owner,
		ScriptID:  h.ScriptID,
		Kind:      h.Kind.String(),
		Status:    status[h.status],
		Iteration: h.iteration,
		Created:   h.Created,
	}
}

// Cancelled check if the handle was cancelled
func (h *Handle) Cancelled() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.status == CANCELLED
}

func (c *Coordinator) cancelWhere(match func(h *Handle) bool) int {
	c.mutex.Lock()
	ids := []string{}
	for id, h := range c.handles {
		if match(h) {
			ids = append(ids, id)
		}
	}
	c.mutex.Unlock()

	n := 0
	for _, id := range ids {
		if c.Cancel(id) {
			n++
		}
	}
	return n
}

// remove the handle from the registry and settle it
func (c *Coordinator) remove(id string, final int) *Handle {
	c.mutex.Lock()
	h, has := c.handles[id]
	if has {
		delete(c.handles, id)
		if owned := c.owners[h.Owner]; owned != nil {
			delete(owned, id)
			if len(owned) == 0 {
				delete(c.owners, h.Owner)
			}
		}
	}
	c.mutex.Unlock()

	if !has {
		return nil
	}

	h.mutex.Lock()
	done := h.request.Done
	if h.status == RUNNING {
		done = nil // the running fire settles it
	}
	h.status = final
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.mutex.Unlock()

	if done != nil {
		done()
	}
	return h
}

// arm enqueue the next fire of the handle after wait
func (c *Coordinator) arm(h *Handle, wait time.Duration) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.status == CANCELLED || h.status == COMPLETED {
		return
	}

	h.status = WAITING
	if wait <= 0 {
		go c.enqueue(h)
		return
	}
	h.timer = time.AfterFunc(wait, func() { c.enqueue(h) })
}

func (c *Coordinator) enqueue(h *Handle) {
	select {
	case c.jobque <- h:
	case <-c.ctx.Done():
	}
}

func (c *Coordinator) work() {
	defer c.wg.Done()
	for {
		select {
		case h := <-c.jobque:
			c.fire(h)
		case <-c.ctx.Done():
			return
		}
	}
}

// fire validate the owner and hand the work to the executor
func (c *Coordinator) fire(h *Handle) {
	if h.Cancelled() {
		return
	}

	if !c.online(h.Owner) {
		log.Trace("[TASK] %s #%s owner %s is offline, cancelled", c.name, h.ID, ownerName(h.Owner))
		c.Cancel(h.ID)
		return
	}

	c.executor.Do(func() {
		h.mutex.Lock()
		if h.status == CANCELLED {
			h.mutex.Unlock()
			return
		}
		h.status = RUNNING
		iteration := h.iteration
		h.mutex.Unlock()

		more := c.run(h, iteration)

		h.mutex.Lock()
		h.iteration++
		iteration = h.iteration
		cancelled := h.status == CANCELLED
		if !cancelled {
			h.status = WAITING
		}
		h.mutex.Unlock()

		req := h.request
		if cancelled {
			if req.Done != nil {
				req.Done()
			}
			return
		}

		if req.Kind != Loop || !more || (req.Count > 0 && iteration >= req.Count) {
			if c.remove(h.ID, COMPLETED) != nil {
				log.Trace("[TASK] %s #%s completed after %d fires", c.name, h.ID, iteration)
			}
			return
		}
		c.arm(h, req.Interval)
	})
}

func (c *Coordinator) run(h *Handle, iteration int) (more bool) {
	defer func() {
		if err := recover(); err != nil {
			log.Error("[TASK] %s Job:%v %v", c.name, h.ID, err)
			more = false
		}
	}()
	log.Trace("[TASK] %s #%s RUNNING %d", c.name, h.ID, iteration)
	return h.request.Fire(iteration)
}

func ownerName(owner string) string {
	if owner == "" {
		return "the server"
	}
	return owner
}
