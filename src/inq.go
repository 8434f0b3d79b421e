package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Received frame queue.
 *
 * Description: In the single-threaded arrangement the receive context
 *		runs the upper PPP dispatcher itself.  When the upper
 *		layer lives on its own thread, this queue carries
 *		completed frames across: the receive context appends
 *		and returns immediately, a consumer thread drains the
 *		queue serially and feeds the upper layer.
 *
 *		Each queue item pairs the frame with the link it
 *		arrived on, so the consumer knows where to route it
 *		without anything being smuggled inside the frame bytes.
 *
 *		The queue is bounded.  A full queue refuses the frame
 *		and the decoder counts it as a drop, the same as any
 *		other resource shortage.
 *
 *---------------------------------------------------------------*/

import "sync"

/* The queue is a linked list of these. */

type inq_item_s struct {
	nextp *inq_item_s
	pcb   *pppos_pcb
	pb    *pbuf
}

type inq_s struct {
	mu    sync.Mutex /* Critical section for updating the queue. */
	head  *inq_item_s
	tail  *inq_item_s
	count int
	limit int

	wake_up chan struct{} /* Notify the consumer when queue not empty. */
	quit    chan struct{}
	wg      sync.WaitGroup
}

const INQ_DEFAULT_LIMIT = 64

/*-------------------------------------------------------------------
 *
 * Name:        inq_init
 *
 * Purpose:     Create the queue and start its consumer thread.
 *
 * Inputs:	limit	- Maximum queued frames.  0 takes the default.
 *
 *--------------------------------------------------------------------*/

func inq_init(limit int) *inq_s {
	if limit <= 0 {
		limit = INQ_DEFAULT_LIMIT
	}
	var q = &inq_s{
		limit:   limit,
		wake_up: make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
	q.wg.Add(1)
	go inq_thread(q)
	return q
}

/*-------------------------------------------------------------------
 *
 * Name:        inq_append
 *
 * Purpose:     Add a frame to the end of the queue.
 *
 * Returns:	ErrMem when the queue is full; the caller still owns
 *		the frame in that case.  On success the queue owns it.
 *
 *--------------------------------------------------------------------*/

func inq_append(q *inq_s, pcb *pppos_pcb, pb *pbuf) error {
	q.mu.Lock()
	if q.count >= q.limit {
		q.mu.Unlock()
		return ErrMem
	}
	var pnew = &inq_item_s{pcb: pcb, pb: pb}
	if q.tail == nil {
		q.head = pnew
	} else {
		q.tail.nextp = pnew
	}
	q.tail = pnew
	q.count++
	q.mu.Unlock()

	select {
	case q.wake_up <- struct{}{}:
	default: /* Consumer already has a wake-up pending. */
	}
	return nil
}

/* Remove the item at the head of the queue.  nil when empty. */

func inq_remove(q *inq_s) *inq_item_s {
	q.mu.Lock()
	var item = q.head
	if item != nil {
		q.head = item.nextp
		if q.head == nil {
			q.tail = nil
		}
		q.count--
		item.nextp = nil
	}
	q.mu.Unlock()
	return item
}

/*-------------------------------------------------------------------
 *
 * Name:        inq_thread
 *
 * Purpose:     Consumer thread.  Drains the queue serially into the
 *		upper layer so frames from one link keep their order.
 *
 *--------------------------------------------------------------------*/

func inq_thread(q *inq_s) {
	defer q.wg.Done()
	for {
		select {
		case <-q.wake_up:
			for {
				var item = inq_remove(q)
				if item == nil {
					break
				}
				pppos_upper_input(item.pcb, item.pb)
			}
		case <-q.quit:
			/* Anything still queued is released, not delivered. */
			for {
				var item = inq_remove(q)
				if item == nil {
					return
				}
				pbuf_free(item.pb)
			}
		}
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        inq_terminate
 *
 * Purpose:     Stop the consumer thread and release leftovers.
 *
 *--------------------------------------------------------------------*/

func inq_terminate(q *inq_s) {
	close(q.quit)
	q.wg.Wait()
}

/*
 * The dispatcher face of the queue.  Inject one into pppos_create_disp
 * to get the multithreaded arrangement.
 */

type queued_dispatcher struct {
	q *inq_s
}

func inq_dispatcher(q *inq_s) upper_dispatcher {
	return queued_dispatcher{q: q}
}

func (d queued_dispatcher) dispatch(pcb *pppos_pcb, pb *pbuf) error {
	return inq_append(d.q, pcb, pb)
}
