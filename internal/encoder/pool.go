package encoder

// meanPool averages transformer hidden states over the sequence dimension,
// counting only positions the attention mask marks as real tokens.
//
// hidden is flat [batch * seqLen * dim], mask is flat [batch * seqLen].
// The result is flat [batch * dim], one pooled vector per sample. A sample
// whose mask is all zeros pools to the zero vector.
func meanPool(hidden []float32, mask []int64, batch, seqLen, dim int64) []float32 {
	out := make([]float32, batch*dim)
	for b := int64(0); b < batch; b++ {
		sample := out[b*dim : (b+1)*dim]
		var tokens float32
		for s := int64(0); s < seqLen; s++ {
			if mask[b*seqLen+s] == 0 {
				continue
			}
			tokens++
			row := hidden[(b*seqLen+s)*dim : (b*seqLen+s+1)*dim]
			for d, h := range row {
				sample[d] += h
			}
		}
		if tokens == 0 {
			continue
		}
		for d := range sample {
			sample[d] /= tokens
		}
	}
	return out
}
