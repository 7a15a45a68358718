package ga

import "math/rand"

// tournamentSelect реализует турнирный отбор.
// возвращается индекс особи с наилучшим значением fitness (минимальное значение целевой функции).
func tournamentSelect(scores []float64, tournamentSize int, rng *rand.Rand) int {
	best := rng.Intn(len(scores))
	bestScore := scores[best]
	for i := 1; i < tournamentSize; i++ {
		cand := rng.Intn(len(scores))
		if scores[cand] < bestScore {
			best = cand
			bestScore = scores[cand]
		}
	}
	return best
}

// maxParentRetries ограничивает повторные турниры за второго родителя.
const maxParentRetries = 16

// selectParents выбирает двух различных родителей турниром. Если турнир
// раз за разом возвращает первого родителя, второй берётся случайно.
func selectParents(scores []float64, tournamentSize int, rng *rand.Rand) (int, int) {
	p1 := tournamentSelect(scores, tournamentSize, rng)
	for i := 0; i < maxParentRetries; i++ {
		if p2 := tournamentSelect(scores, tournamentSize, rng); p2 != p1 {
			return p1, p2
		}
	}
	p2 := rng.Intn(len(scores) - 1)
	if p2 >= p1 {
		p2++
	}
	return p1, p2
}

// uniformCrossover реализует равномерный кроссовер.
// Каждый ген потомки берут от случайного родителя.
func uniformCrossover(p1, p2, c1, c2 []int, rng *rand.Rand) {
	for i := range p1 {
		if rng.Float64() < 0.5 {
			c1[i], c2[i] = p1[i], p2[i]
		} else {
			c1[i], c2[i] = p2[i], p1[i]
		}
	}
}

// mutateReassign переназначает одну случайную задачу случайному исполнителю.
func mutateReassign(p []int, workers int, rng *rand.Rand) {
	p[rng.Intn(len(p))] = rng.Intn(workers)
}
