package main

import "github.com/pkg/errors"

func errRequiredFlag(name string) error {
	return errors.Errorf("%s is required", name)
}
