package ledger

// PageSize is the fixed number of items returned by a single listing call.
const PageSize = 10

// pageBounds computes the half-open window [offset, offset+count) for a
// listing over a collection of the given total length. Offsets at or past the
// end yield an empty window rather than an error, so callers can page with a
// plain offset += PageSize loop until offset >= total.
func pageBounds(offset, total int) (start, end int) {
	if offset < 0 || offset >= total {
		return 0, 0
	}
	end = offset + PageSize
	if end > total {
		end = total
	}
	return offset, end
}
