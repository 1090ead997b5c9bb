package sqsengine

import (
	"iter"
	"math/rand/v2"
)

// NewShardedLinkedList returns a linked list split across shardCount
// independent shards, so that concurrent producers within a single
// message group don't serialize on one list's head/tail pointers.
func NewShardedLinkedList[T any](shardCount int) *ShardedLinkedList[T] {
	if shardCount == 0 {
		panic("sharded linked list cannot have 0 shards")
	}
	return &ShardedLinkedList[T]{
		shards: make([]LinkedList[T], shardCount),
	}
}

type ShardedLinkedList[T any] struct {
	shards []LinkedList[T]
	len    int
}

// ShardedLinkedListNode is a linked list node with a shard index.
type ShardedLinkedListNode[T any] struct {
	ListNode   LinkedListNode[T]
	ShardIndex uint32
}

func (sll *ShardedLinkedList[T]) Len() int {
	return sll.len
}

func (sll *ShardedLinkedList[T]) Push(value T) *ShardedLinkedListNode[T] {
	shardIndex := rand.IntN(len(sll.shards))
	node := sll.shards[shardIndex].Push(value)
	sll.len++
	return &ShardedLinkedListNode[T]{
		ListNode:   *node,
		ShardIndex: uint32(shardIndex),
	}
}

func (sll *ShardedLinkedList[T]) Pop() (out T, ok bool) {
	if sll.len == 0 {
		return
	}
	randomStartIndex := rand.IntN(len(sll.shards))
	for x := range sll.shards {
		shardIndex := (randomStartIndex + x) % len(sll.shards)
		if sll.shards[shardIndex].Len() > 0 {
			out, ok = sll.shards[shardIndex].Pop()
			sll.len--
			return
		}
	}
	return
}

func (sll *ShardedLinkedList[T]) Remove(node *ShardedLinkedListNode[T]) {
	sll.len--
	sll.shards[node.ShardIndex].Remove(&node.ListNode)
}

// Clear clears the linked list.
func (sll *ShardedLinkedList[T]) Clear() {
	for i := range sll.shards {
		sll.shards[i].Clear()
	}
	sll.len = 0
}

// EachNode returns an iterator over every node across every shard, tagging
// each with the shard index it came from so it can later be removed.
func (sll *ShardedLinkedList[T]) EachNode() iter.Seq[*ShardedLinkedListNode[T]] {
	return func(yield func(*ShardedLinkedListNode[T]) bool) {
		for shardIndex := range sll.shards {
			for node := range sll.shards[shardIndex].EachNode() {
				if !yield(&ShardedLinkedListNode[T]{ListNode: *node, ShardIndex: uint32(shardIndex)}) {
					return
				}
			}
		}
	}
}
