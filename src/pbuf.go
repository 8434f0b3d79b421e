package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Chained fixed-size buffer segments.
 *
 * Description: A frame in flight is a singly linked chain of pool
 *		segments.  Each segment holds up to PBUF_POOL_BUFSIZE
 *		octets; tot_len on a segment counts that segment plus
 *		everything chained after it, so the head's tot_len is
 *		the whole frame.
 *
 *		Ownership is single-owner.  Concatenating a tail into a
 *		head transfers the tail's ownership into the head's
 *		chain; whoever holds the head frees the lot.
 *
 *		Segments come from a counted pool so that exhaustion is
 *		a real, observable condition rather than an abstract
 *		impossibility.  An exhausted pool makes pbuf_alloc
 *		return nil and the framer drops the frame in progress,
 *		exactly what a fixed-memory build would do.
 *
 *---------------------------------------------------------------*/

import "sync"

const PBUF_POOL_BUFSIZE = 128 /* Usable octets per segment. */

const PBUF_POOL_SIZE = 512 /* Default pool capacity in segments. */

type pbuf struct {
	next    *pbuf
	payload []byte /* len() is current fill, cap() the segment size. */
	tot_len int    /* This segment plus all following. */
	pool    *pbuf_pool
}

type pbuf_pool struct {
	mu       sync.Mutex
	limit    int /* Segments available.  0 means unlimited. */
	in_use   int
	max_used int /* High-water mark. */
}

func pbuf_pool_new(limit int) *pbuf_pool {
	return &pbuf_pool{limit: limit}
}

/*-------------------------------------------------------------------
 *
 * Name:        pbuf_alloc
 *
 * Purpose:     Take one empty segment from the pool.
 *
 * Returns:	The segment, or nil when the pool is exhausted.
 *		The caller must eventually pbuf_free the chain it
 *		ends up in.
 *
 *--------------------------------------------------------------------*/

func pbuf_alloc(pool *pbuf_pool) *pbuf {
	pool.mu.Lock()
	if pool.limit > 0 && pool.in_use >= pool.limit {
		pool.mu.Unlock()
		return nil
	}
	pool.in_use++
	if pool.in_use > pool.max_used {
		pool.max_used = pool.in_use
	}
	pool.mu.Unlock()

	return &pbuf{
		payload: make([]byte, 0, PBUF_POOL_BUFSIZE),
		pool:    pool,
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        pbuf_free
 *
 * Purpose:     Return a whole chain to its pool.
 *
 * Returns:	Number of segments freed.  Safe on nil.
 *
 *--------------------------------------------------------------------*/

func pbuf_free(p *pbuf) int {
	var count = 0
	for p != nil {
		var next = p.next
		p.next = nil
		p.pool.mu.Lock()
		p.pool.in_use--
		p.pool.mu.Unlock()
		count++
		p = next
	}
	return count
}

/*-------------------------------------------------------------------
 *
 * Name:        pbuf_cat
 *
 * Purpose:     Chain t onto the end of h, transferring ownership of
 *		t into h's chain.
 *
 *		Every segment from h to the old end gains t's tot_len
 *		so the head invariant keeps holding.
 *
 *--------------------------------------------------------------------*/

func pbuf_cat(h *pbuf, t *pbuf) {
	var p = h
	for {
		p.tot_len += t.tot_len
		if p.next == nil {
			break
		}
		p = p.next
	}
	p.next = t
}

/*-------------------------------------------------------------------
 *
 * Name:        pbuf_realloc
 *
 * Purpose:     Shrink a chain to a new total length, freeing any
 *		segments that fall entirely beyond it.
 *
 * Inputs:	p	- Head of chain.  tot_len must be >= new_len.
 *		new_len	- Desired total octet count.
 *
 *--------------------------------------------------------------------*/

func pbuf_realloc(p *pbuf, new_len int) {
	if new_len >= p.tot_len {
		return
	}

	/* Walk to the segment the new end falls in, rewriting tot_len. */
	var rem = new_len
	var q = p
	for rem > len(q.payload) {
		q.tot_len = rem
		rem -= len(q.payload)
		q = q.next
	}
	q.payload = q.payload[:rem]
	q.tot_len = rem

	if q.next != nil {
		pbuf_free(q.next)
		q.next = nil
	}
}

func pbuf_clen(p *pbuf) int {
	var n = 0
	for ; p != nil; p = p.next {
		n++
	}
	return n
}

/*-------------------------------------------------------------------
 *
 * Name:        pbuf_bytes
 *
 * Purpose:     Flatten a chain into one contiguous slice.
 *
 *--------------------------------------------------------------------*/

func pbuf_bytes(p *pbuf) []byte {
	if p == nil {
		return nil
	}
	var out = make([]byte, 0, p.tot_len)
	for ; p != nil; p = p.next {
		out = append(out, p.payload...)
	}
	return out
}

/*-------------------------------------------------------------------
 *
 * Name:        pbuf_take
 *
 * Purpose:     Build a chain holding a copy of the given octets.
 *
 * Returns:	Head of the new chain, or nil when the pool runs dry
 *		partway (anything already taken is returned first).
 *
 *--------------------------------------------------------------------*/

func pbuf_take(pool *pbuf_pool, data []byte) *pbuf {
	var head = pbuf_alloc(pool)
	if head == nil {
		return nil
	}
	var tail = head
	for _, c := range data {
		if len(tail.payload) == cap(tail.payload) {
			var nb = pbuf_alloc(pool)
			if nb == nil {
				pbuf_free(head)
				return nil
			}
			tail.next = nb
			tail = nb
		}
		tail.payload = append(tail.payload, c)
	}
	/* Fix up tot_len back to front. */
	var total = 0
	for p := head; p != nil; p = p.next {
		total += len(p.payload)
	}
	var rem = total
	for p := head; p != nil; p = p.next {
		p.tot_len = rem
		rem -= len(p.payload)
	}
	return head
}
