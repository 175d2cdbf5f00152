package registry

// HistorySize is the number of samples kept per resource ring buffer.
const HistorySize = 10

// FloatRing is a fixed-capacity ring buffer of float64 samples.
type FloatRing struct {
	samples [HistorySize]float64
	cursor  int
	count   int
}

// Push appends a sample, overwriting the oldest once full.
func (r *FloatRing) Push(v float64) {
	r.samples[r.cursor] = v
	r.cursor = (r.cursor + 1) % HistorySize
	if r.count < HistorySize {
		r.count++
	}
}

// Average returns the mean of the samples pushed so far, 0 when empty.
func (r *FloatRing) Average() float64 {
	if r.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < r.count; i++ {
		sum += r.samples[i]
	}
	return sum / float64(r.count)
}

// Len returns the number of valid samples.
func (r *FloatRing) Len() int { return r.count }

// UintRing is a fixed-capacity ring buffer of uint64 samples.
type UintRing struct {
	samples [HistorySize]uint64
	cursor  int
	count   int
}

func (r *UintRing) Push(v uint64) {
	r.samples[r.cursor] = v
	r.cursor = (r.cursor + 1) % HistorySize
	if r.count < HistorySize {
		r.count++
	}
}

func (r *UintRing) Average() uint64 {
	if r.count == 0 {
		return 0
	}
	var sum uint64
	for i := 0; i < r.count; i++ {
		sum += r.samples[i]
	}
	return sum / uint64(r.count)
}

func (r *UintRing) Len() int { return r.count }
