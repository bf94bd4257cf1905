// Package main provides a small CLI to evaluate horizon distances without
// running the daemon. Given an observer height it prints how far the observer
// can see; given -distance it prints the minimum height a target at that
// range must have to be visible.
package main

import (
	"flag"
	"fmt"
	"log"

	"sightline/pkg/horizon"
)

func main() {
	viewHeight := flag.Float64("height", 1.70, "Observer eye height above ground in meters")
	objectHeight := flag.Float64("object", 0, "Target height above its ground in meters")
	distance := flag.Float64("distance", -1, "Target distance in km; when set, print the minimum visible height instead")
	coefficient := flag.Float64("k", horizon.DefaultCoefficient, "Refraction coefficient")
	flag.Parse()

	if err := run(*viewHeight, *objectHeight, *distance, *coefficient); err != nil {
		log.Fatal(err)
	}
}

func run(viewHeight, objectHeight, distance, k float64) error {
	plain := horizon.New(horizon.WithoutRefraction)
	refracted := horizon.NewWithCoefficient(horizon.WithRefraction, k)

	if distance >= 0 {
		return printMinHeight(plain, refracted, viewHeight, distance)
	}

	fmt.Printf("Observer: %.2f m, target: %.2f m\n\n", viewHeight, objectHeight)
	for _, m := range []horizon.Model{plain, refracted} {
		d, err := m.Distance(viewHeight, objectHeight)
		if err != nil {
			return err
		}
		fmt.Printf("  %-14s %8.2f km\n", m.Mode().String()+":", d)
	}
	return nil
}

func printMinHeight(plain, refracted horizon.Model, viewHeight, distance float64) error {
	fmt.Printf("Observer: %.2f m, target range: %.1f km\n\n", viewHeight, distance)
	for _, m := range []horizon.Model{plain, refracted} {
		h, required, err := m.MinVisibleHeight(viewHeight, distance)
		if err != nil {
			return err
		}
		if !required {
			fmt.Printf("  %-14s ground level already visible\n", m.Mode().String()+":")
			continue
		}
		fmt.Printf("  %-14s %8.1f m\n", m.Mode().String()+":", h)
	}
	return nil
}
