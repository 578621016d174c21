// Package batch resolves many independent keys concurrently through a
// bounded worker pool.
//
// Results keep the order of the input keys, and each key carries its own
// error, so callers can degrade per item:
//
//	results := batch.FetchAll(ctx, ids, batch.DefaultConfig(),
//		func(ctx context.Context, id string) (*pokemon.DetailRecord, error) {
//			return svc.GetDetail(ctx, id)
//		})
//	for _, r := range results {
//		if r.Err != nil {
//			// fall back for r.Key
//		}
//	}
package batch
