package main

import (
	"localMapReduce/mapreduce"
)

// mapFunc is called once per input record. For charcount it tallies every
// character of the record and emits one (character, count) pair per
// distinct character found.
func mapFunc(_ int, text string, worker *mapreduce.Worker[int, string, byte, int, byte, int]) {
	var counts [256]int

	for i := 0; i < len(text); i++ {
		counts[text[i]]++
	}

	for c, count := range counts {
		if count == 0 {
			continue
		}
		worker.EmitIntermediate(byte(c), count)
	}
}

// reduceFunc is called once per distinct character with every count the
// map phase produced for it. It sums the counts and emits the total.
func reduceFunc(bucket []mapreduce.KeyValue[byte, int], worker *mapreduce.Worker[int, string, byte, int, byte, int]) {
	var total int

	for _, pair := range bucket {
		total += pair.Value
	}

	worker.EmitOutput(bucket[0].Key, total)
}

// lessFunc orders the intermediate keys. Byte comparison is a strict weak
// ordering, which is all the engine requires to group equal characters.
func lessFunc(a, b byte) bool {
	return a < b
}
