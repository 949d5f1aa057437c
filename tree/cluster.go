// SPDX-License-Identifier: GPL-2.0-or-later

package tree

import "q3map/conlog"

// NumberClusters gives every non opaque leaf its own cluster and returns
// how many there are. Opaque leaves get -1.
func NumberClusters(t *Tree) int {
	conlog.Stage("NumberClusters")
	clusters := 0
	t.Leaves(func(n *Node) {
		if n.Opaque {
			n.Cluster = -1
			return
		}
		n.Cluster = clusters
		clusters++
	})
	conlog.Verbose(1, "%9d visclusters\n", clusters)
	return clusters
}
