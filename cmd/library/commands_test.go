package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"serve", "migrate", "sweep", "admin"}, names)

	create, _, err := root.Find([]string{"admin", "create"})
	require.NoError(t, err)
	require.Equal(t, "create", create.Name())
	require.NotNil(t, create.Flags().Lookup("username"))
	require.NotNil(t, root.PersistentFlags().Lookup("storage"))
}
