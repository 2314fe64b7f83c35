package sequence

import (
	"math/rand"
	"sort"

	"github.com/piwi3910/SlabCAM/internal/logging"
)

// GeneticConfig holds parameters for the genetic search.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
	}
}

// ScaledGeneticConfig grows the search for larger jobs.
func ScaledGeneticConfig(n int) GeneticConfig {
	config := DefaultGeneticConfig()
	if n > 20 {
		config.Generations = 150
	}
	if n > 50 {
		config.Generations = 200
		config.PopulationSize = 80
	}
	return config
}

// chromosome is a candidate cutting order.
type chromosome struct {
	order      []int
	violations int
	rapid      float64
}

// better ranks feasibility first, then travel.
func (c chromosome) better(o chromosome) bool {
	if c.violations != o.violations {
		return c.violations < o.violations
	}
	return c.rapid < o.rapid
}

type geneticSearch struct {
	problem *problem
	config  GeneticConfig
	rng     *rand.Rand
}

func newGeneticSearch(p *problem, config GeneticConfig, seed int64) *geneticSearch {
	return &geneticSearch{
		problem: p,
		config:  config,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (g *geneticSearch) evaluate(c *chromosome) {
	c.violations, c.rapid = g.problem.cost(c.order)
}

// run evolves the population and returns the best order found. The greedy
// order is part of the first generation and elitism keeps the best, so the
// result is never worse than nearestOrder.
func (g *geneticSearch) run() []int {
	n := len(g.problem.starts)
	if n < 3 {
		return g.problem.nearestOrder()
	}

	population := g.initPopulation()
	for i := range population {
		g.evaluate(&population[i])
	}
	sortPopulation(population)
	seed := population[0]

	for gen := 0; gen < g.config.Generations; gen++ {
		newPop := make([]chromosome, 0, g.config.PopulationSize)

		eliteCount := g.config.EliteCount
		if eliteCount > len(population) {
			eliteCount = len(population)
		}
		for i := 0; i < eliteCount; i++ {
			newPop = append(newPop, copyChromosome(population[i]))
		}

		for len(newPop) < g.config.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)

			child := g.orderCrossover(parent1, parent2)
			g.mutate(&child)
			g.evaluate(&child)
			newPop = append(newPop, child)
		}

		population = newPop
		sortPopulation(population)
	}

	best := population[0]
	logging.Logger().Debug("sequence search done",
		"chains", n, "generations", g.config.Generations,
		"seed_rapid", seed.rapid, "best_rapid", best.rapid, "violations", best.violations)
	return best.order
}

func sortPopulation(population []chromosome) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].better(population[j])
	})
}

// initPopulation creates random orders plus the greedy one.
func (g *geneticSearch) initPopulation() []chromosome {
	n := len(g.problem.starts)
	population := make([]chromosome, g.config.PopulationSize)
	for i := range population {
		population[i] = chromosome{order: g.rng.Perm(n)}
	}
	if len(population) > 0 {
		population[0] = chromosome{order: g.problem.nearestOrder()}
	}
	return population
}

// tournamentSelect picks the best individual from a random tournament.
func (g *geneticSearch) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.better(best) {
			best = candidate
		}
	}
	return copyChromosome(best)
}

// orderCrossover implements Order Crossover (OX1): a slice of parent1 is
// kept in place and the rest is filled in parent2's order.
func (g *geneticSearch) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.order)
	if n <= 2 {
		return copyChromosome(parent1)
	}

	point1 := g.rng.Intn(n)
	point2 := g.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{order: make([]int, n)}
	inSegment := make([]bool, n)
	for i := point1; i <= point2; i++ {
		child.order[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	childIdx := (point2 + 1) % n
	for _, idx := range parent2.order {
		if !inSegment[idx] {
			child.order[childIdx] = idx
			childIdx = (childIdx + 1) % n
		}
	}
	return child
}

// mutate swaps two positions and sometimes reverses a run.
func (g *geneticSearch) mutate(c *chromosome) {
	n := len(c.order)
	if n < 2 {
		return
	}

	if g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}

	// Inversion undoes crossing rapids
	if g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for i < j {
			c.order[i], c.order[j] = c.order[j], c.order[i]
			i++
			j--
		}
	}
}

func copyChromosome(c chromosome) chromosome {
	order := make([]int, len(c.order))
	copy(order, c.order)
	return chromosome{order: order, violations: c.violations, rapid: c.rapid}
}
