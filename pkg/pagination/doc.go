// Package pagination provides the generic paged fetch manager for Metal
// Archives lists.
//
// # Overview
//
// A Manager owns one growing collection of records of a single entity kind.
// Every Fetch requests the next page (index = len(items) / pageSize),
// decodes it with the kind's decoder and appends the records in server
// order. Once the server has reported a total and the collection has
// reached it, Fetch completes without a request.
//
// Usage:
//
//	c, _ := client.New(client.DefaultConfig("metalfeed/1.0"))
//	m := pagination.NewManager[models.BandAddition](c, models.BandAdditionKind{}, pagination.Config{
//	    BaseURL: c.BaseURL(),
//	    Options: models.YearMonthOf(time.Now()).Options(),
//	})
//	if err := m.Load(ctx); err != nil {
//	    return err
//	}
//	fmt.Println(m.Len(), "bands")
//
// # Concurrency
//
// State is guarded by a mutex; each request runs on its own goroutine and
// the completion callback is invoked from it once the lock is released.
// Overlapping Fetch calls share a single request. Reset discards the
// collection and bumps a generation counter so that the result of a
// request still running is dropped and its callbacks receive
// ErrSuperseded.
//
// Collect is a separate one-shot helper for bulk export: it learns the
// total from the first page and fetches the rest in parallel.
package pagination
