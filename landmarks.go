package zoomdive

// Classic landmarks in the Mandelbrot set, usable as zoom targets.
// Pass any of them as a center to render different parts of the set.
var (
	// Seahorse Valley: dense filaments and repeating "seahorse" curls
	SeahorseValley = Center{X: -0.75, Y: 0.1}

	// Elephant Valley: large bulb with trunk-like tendrils
	ElephantValley = Center{X: -1.8, Y: -0.06}

	// Spiral Minibrot: small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Center{X: -0.74275, Y: 0.13175}

	// Triple Spiral: threefold symmetric spiral structure
	TripleSpiral = Center{X: -0.7465, Y: 0.0965}

	// Valley of the Dragon: deep, highly detailed spiral filaments
	ValleyOfTheDragon = Center{X: -0.7375, Y: 0.1825}

	// Minibrot in a Mini-Spiral: self-similar copy inside a spiral arm
	MinibrotInMiniSpiral = Center{X: -1.73825, Y: -0.02275}
)
