package outbox

import (
	"log"
	"sync"
	"time"

	"github.com/gammazero/workerpool"

	"github.com/greenleafprop/rentledger/models"
)

// Relay moves outbox rows to the Sender: consumers poll the repo and feed a
// channel, producers send and hand the ids to batched unlock/remove flushers.
type Relay interface {
	Start()
	Close()
}

type Config struct {
	ChannelSize uint64

	ConsumerCount uint64
	BatchSize     uint64
	PollInterval  time.Duration

	ProducerCount uint64
	WorkerCount   int
	FlushInterval time.Duration

	Repo   EventRepo
	Sender Sender
}

type relay struct {
	events     chan models.Event
	consumer   *consumer
	producer   *producer
	workerPool *workerpool.WorkerPool
}

func NewRelay(cfg Config) Relay {
	events := make(chan models.Event, cfg.ChannelSize)
	workerPool := workerpool.New(cfg.WorkerCount)

	return &relay{
		events: events,
		consumer: newConsumer(consumerConfig{
			count:     cfg.ConsumerCount,
			batchSize: cfg.BatchSize,
			interval:  cfg.PollInterval,
			repo:      cfg.Repo,
			events:    events,
		}),
		producer: newProducer(producerConfig{
			count:         cfg.ProducerCount,
			flushInterval: cfg.FlushInterval,
			batchSize:     cfg.BatchSize,
			repo:          cfg.Repo,
			sender:        cfg.Sender,
			events:        events,
			workerPool:    workerPool,
		}),
		workerPool: workerPool,
	}
}

func (r *relay) Start() {
	r.producer.start()
	r.consumer.start()
}

func (r *relay) Close() {
	r.consumer.close()
	r.producer.close()
	r.workerPool.StopWait()
}

type consumerConfig struct {
	count     uint64
	batchSize uint64
	interval  time.Duration
	repo      EventRepo
	events    chan<- models.Event
}

type consumer struct {
	consumerConfig

	done chan bool
	wg   *sync.WaitGroup
}

func newConsumer(cfg consumerConfig) *consumer {
	return &consumer{
		consumerConfig: cfg,
		done:           make(chan bool),
		wg:             &sync.WaitGroup{},
	}
}

func (c *consumer) consume() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			events, err := c.repo.Lock(c.batchSize)
			if err != nil {
				log.Printf("outbox: failed to lock events: %v", err)
				continue
			}
			for _, event := range events {
				c.events <- event
			}
		case <-c.done:
			return
		}
	}
}

func (c *consumer) start() {
	for i := uint64(0); i < c.count; i++ {
		c.wg.Add(1)
		go c.consume()
	}
}

func (c *consumer) close() {
	close(c.done)
	c.wg.Wait()
}

type producerConfig struct {
	count         uint64
	flushInterval time.Duration
	batchSize     uint64
	repo          EventRepo
	sender        Sender
	events        <-chan models.Event
	workerPool    *workerpool.WorkerPool
}

type producer struct {
	producerConfig

	idsToUnlock chan uint
	idsToRemove chan uint

	done chan bool
	wg   *sync.WaitGroup
}

func newProducer(cfg producerConfig) *producer {
	return &producer{
		producerConfig: cfg,
		idsToUnlock:    make(chan uint),
		idsToRemove:    make(chan uint),
		done:           make(chan bool),
		wg:             &sync.WaitGroup{},
	}
}

func (p *producer) flushUnlock(eventIDs []uint) {
	if len(eventIDs) == 0 {
		return
	}
	p.workerPool.Submit(func() {
		if err := p.repo.Unlock(eventIDs); err != nil {
			log.Printf("outbox: failed to unlock events %v: %v", eventIDs, err)
		}
	})
}

func (p *producer) unlock() {
	defer p.wg.Done()
	var ids []uint
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.flushUnlock(ids)
			ids = nil
		case id := <-p.idsToUnlock:
			ids = append(ids, id)
			if uint64(len(ids)) == p.batchSize {
				p.flushUnlock(ids)
				ids = nil
			}
		case <-p.done:
			p.flushUnlock(ids)
			return
		}
	}
}

func (p *producer) flushRemove(eventIDs []uint) {
	if len(eventIDs) == 0 {
		return
	}
	p.workerPool.Submit(func() {
		if err := p.repo.Remove(eventIDs); err != nil {
			log.Printf("outbox: failed to remove events %v: %v", eventIDs, err)
		}
	})
}

func (p *producer) remove() {
	defer p.wg.Done()
	var ids []uint
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.flushRemove(ids)
			ids = nil
		case id := <-p.idsToRemove:
			ids = append(ids, id)
			if uint64(len(ids)) == p.batchSize {
				p.flushRemove(ids)
				ids = nil
			}
		case <-p.done:
			p.flushRemove(ids)
			return
		}
	}
}

func (p *producer) handle(event models.Event) {
	if err := p.sender.Send(event); err != nil {
		log.Printf("outbox: failed to send event %d: %v", event.ID, err)
		p.idsToUnlock <- event.ID
		return
	}
	p.idsToRemove <- event.ID
}

func (p *producer) produce() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.events:
			p.handle(event)
		case <-p.done:
			return
		}
	}
}

func (p *producer) start() {
	p.wg.Add(1)
	go p.unlock()

	p.wg.Add(1)
	go p.remove()

	for i := uint64(0); i < p.count; i++ {
		p.wg.Add(1)
		go p.produce()
	}
}

func (p *producer) close() {
	close(p.done)
	p.wg.Wait()
}
