package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) checkPassword(pwd string) error {
	ctx := context.Background()
	sess, err := cli.sessSvc.Start(ctx)
	if err != nil {
		return err
	}
	defer cli.sessSvc.End(ctx, sess.ID)

	if err := cli.sessSvc.Authenticate(ctx, &sess, pwd); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "password OK")
	return nil
}
