package rod

// Pages served to the live browser tests.
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	CartHTML = `<!DOCTYPE html>
<html>
<head><title>Shop</title></head>
<body>
	<h1>Products</h1>
	<button id="add" class="btn primary">Add to Cart</button>
	<span id="count">0</span>
	<label for="qty">Quantity</label>
	<input id="qty" type="number" name="qty" />
	<input type="text" placeholder="Coupon code" />
	<button style="display:none">Hidden</button>
	<button style="opacity:0">Invisible</button>
	<button style="opacity:0.4">Dimmed</button>
	<script>
		document.getElementById('add').addEventListener('click', function() {
			const c = document.getElementById('count');
			c.textContent = String(Number(c.textContent) + 1);
			fetch('/api/cart', { method: 'POST' }).catch(() => {});
		});
	</script>
</body>
</html>`

	ConsoleErrorHTML = `<!DOCTYPE html>
<html>
<body>
	<p>Broken</p>
	<script>console.error('cart total is NaN');</script>
</body>
</html>`
)
